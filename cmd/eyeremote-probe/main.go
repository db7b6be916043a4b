// Command eyeremote-probe watches the foreground application through the
// selected window backend, and optionally tries to activate a target, so the
// gate and the resolver can be checked on a new desktop.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/eyeremote/eyeremote/pkg/detector"
	"github.com/eyeremote/eyeremote/pkg/utils"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

func main() {
	fmt.Println("eyeremote window backend probe")
	fmt.Println("==============================")

	det, err := detector.New()
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}
	defer det.Close()

	fmt.Printf("\nBackend: %s\n", detector.Describe(det))
	fmt.Printf("Is Available: %v\n\n", det.IsAvailable())

	// eyeremote-probe activate <name>
	if len(os.Args) > 2 && os.Args[1] == "activate" {
		activate(det, os.Args[2])
		return
	}

	fmt.Println("Monitoring the foreground application for 30 seconds...")
	fmt.Println("Switch between different applications to test detection")
	fmt.Println()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	timeout := time.After(30 * time.Second)
	count := 0

	for {
		select {
		case <-timeout:
			fmt.Println("\nProbe completed!")
			return

		case <-ticker.C:
			count++
			name, err := det.GetForegroundProcessName()
			if err != nil {
				log.Printf("[%d] Error: %v", count, err)
				continue
			}

			if name == "" {
				log.Printf("[%d] No window detected", count)
				continue
			}

			fmt.Printf("[%d] App: %-24s | Media: %-5v | Display: %s\n",
				count,
				truncate(name, 24),
				utils.IsMediaApp(name),
				det.GetDisplayServer(),
			)
		}
	}
}

func activate(det window.Platform, name string) {
	start := time.Now()
	handle, err := det.ActivateWindow(name)
	switch {
	case errors.Is(err, window.ErrNoWindow):
		fmt.Printf("No visible window found for %q\n", name)
		os.Exit(1)
	case err != nil:
		log.Fatalf("Activation failed: %v", err)
	}

	fmt.Printf("Activated %q in %v\n", name, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Window: %d  PID: %d  Backend: %s\n", handle.ID, handle.PID, handle.Backend)
	if handle.Title != "" {
		fmt.Printf("  Title: %s\n", handle.Title)
	}

	time.Sleep(200 * time.Millisecond)
	if fg, err := det.GetForegroundProcessName(); err == nil {
		ok := strings.Contains(strings.ToLower(fg), strings.ToLower(name))
		fmt.Printf("  Foreground now: %s (match: %v)\n", fg, ok)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
