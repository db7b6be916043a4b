// Package camera implements the presence oracle with a webcam and OpenCV
// Haar cascades: presence means at least one eye was found inside one of the
// first MaxTargets detected faces.
package camera

import (
	"image"
	"log"
	"os"
	"sync"

	"github.com/eyeremote/eyeremote/internal/presence"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

const (
	DefaultFaceCascade = "/usr/share/opencv4/haarcascades/haarcascade_frontalface_default.xml"
	DefaultEyeCascade  = "/usr/share/opencv4/haarcascades/haarcascade_eye.xml"

	// MaxProbeIndex bounds ListCameras.
	MaxProbeIndex = 10
)

// Config configures capture and detection.
type Config struct {
	FaceCascade string
	EyeCascade  string
	Width       int
	Height      int
	FPS         int
	MaxTargets  int // faces inspected per frame
}

// DefaultConfig returns 640x480 at 30fps, one face, system cascades.
func DefaultConfig() Config {
	return Config{
		FaceCascade: DefaultFaceCascade,
		EyeCascade:  DefaultEyeCascade,
		Width:       640,
		Height:      480,
		FPS:         30,
		MaxTargets:  1,
	}
}

// Oracle opens camera sources.
type Oracle struct {
	config Config
}

func New(cfg Config) *Oracle {
	if cfg.MaxTargets < 1 {
		cfg.MaxTargets = 1
	}
	return &Oracle{config: cfg}
}

// Open starts capture on deviceIndex and loads both cascades. This is the
// slow part of starting a session.
func (o *Oracle) Open(deviceIndex int) (presence.Source, error) {
	for _, path := range []string{o.config.FaceCascade, o.config.EyeCascade} {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrapf(presence.ErrInit, "cascade file not found: %s", path)
		}
	}

	capture, err := gocv.OpenVideoCapture(deviceIndex)
	if err != nil {
		return nil, errors.Wrapf(presence.ErrInit, "could not open camera %d: %v", deviceIndex, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(presence.ErrInit, "could not open camera %d", deviceIndex)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(o.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(o.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(o.config.FPS))

	face := gocv.NewCascadeClassifier()
	if !face.Load(o.config.FaceCascade) {
		face.Close()
		capture.Close()
		return nil, errors.Wrapf(presence.ErrInit, "failed to load face cascade %s", o.config.FaceCascade)
	}

	eye := gocv.NewCascadeClassifier()
	if !eye.Load(o.config.EyeCascade) {
		eye.Close()
		face.Close()
		capture.Close()
		return nil, errors.Wrapf(presence.ErrInit, "failed to load eye cascade %s", o.config.EyeCascade)
	}

	log.Printf("Camera %d opened (%dx%d@%d, max targets %d)",
		deviceIndex, o.config.Width, o.config.Height, o.config.FPS, o.config.MaxTargets)

	return &Source{
		capture:    capture,
		face:       face,
		eye:        eye,
		frame:      gocv.NewMat(),
		gray:       gocv.NewMat(),
		maxTargets: o.config.MaxTargets,
	}, nil
}

// Source reads frames from one camera.
type Source struct {
	mu         sync.Mutex
	capture    *gocv.VideoCapture
	face       gocv.CascadeClassifier
	eye        gocv.CascadeClassifier
	frame      gocv.Mat
	gray       gocv.Mat
	maxTargets int
	closed     bool
}

// Poll grabs one frame and reports whether eyes were found.
func (s *Source) Poll() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, errors.Wrap(presence.ErrPoll, "source closed")
	}
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return false, errors.Wrap(presence.ErrPoll, "failed to read frame from camera")
	}

	gocv.CvtColor(s.frame, &s.gray, gocv.ColorBGRToGray)

	faces := s.face.DetectMultiScaleWithParams(s.gray, 1.1, 5, 0, image.Pt(30, 30), image.Pt(0, 0))
	if len(faces) > s.maxTargets {
		faces = faces[:s.maxTargets]
	}

	for _, r := range faces {
		region := s.gray.Region(r)
		eyes := s.eye.DetectMultiScaleWithParams(region, 1.1, 3, 0, image.Pt(20, 20), image.Pt(0, 0))
		region.Close()
		if len(eyes) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Close releases the camera and the classifiers. It is safe to call twice.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.gray.Close()
	s.frame.Close()
	s.eye.Close()
	s.face.Close()
	if err := s.capture.Close(); err != nil {
		return errors.Wrap(err, "failed to release camera")
	}
	return nil
}

// ListCameras returns the device indices below MaxProbeIndex that open.
func ListCameras() []int {
	var found []int
	for i := 0; i < MaxProbeIndex; i++ {
		capture, err := gocv.OpenVideoCapture(i)
		if err != nil {
			continue
		}
		if capture.IsOpened() {
			found = append(found, i)
		}
		capture.Close()
	}
	return found
}
