// Package capture drives periodic screen and app-metadata sampling
package capture

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"log/slog"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	apperrors "github.com/GriffinCanCode/glimpse/internal/errors"
	"github.com/GriffinCanCode/glimpse/internal/event"
	"github.com/GriffinCanCode/glimpse/internal/frame"
	"github.com/GriffinCanCode/glimpse/internal/segment"
	"github.com/GriffinCanCode/glimpse/internal/trace"
)

// TextExtractor pulls visible text out of an encoded screenshot. Optional;
// a nil extractor disables text classification on frames.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageData []byte, format string) (string, error)
}

// Ingestor consumes frame and metadata updates.
type Ingestor interface {
	HandleFrame(ctx context.Context, u segment.FrameUpdate)
	HandleMetadata(ctx context.Context, u segment.MetadataUpdate)
}

// Pump ticks the capturer and metadata source at configured rates and
// feeds both streams into the ingestor.
type Pump struct {
	capturer  Capturer
	metadata  MetadataSource
	ingest    Ingestor
	extractor TextExtractor

	frameInterval    time.Duration
	metadataInterval time.Duration

	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
	lastApp  event.AppContext

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPump creates a pump. Rates are in samples per second; extractor may
// be nil.
func NewPump(capturer Capturer, metadata MetadataSource, ingest Ingestor, extractor TextExtractor, frameRate, metadataRate float64) *Pump {
	if frameRate <= 0 {
		frameRate = 1.0
	}
	if metadataRate <= 0 {
		metadataRate = 1.0
	}
	return &Pump{
		capturer:         capturer,
		metadata:         metadata,
		ingest:           ingest,
		extractor:        extractor,
		frameInterval:    time.Duration(float64(time.Second) / frameRate),
		metadataInterval: time.Duration(float64(time.Second) / metadataRate),
		stopCh:           make(chan struct{}),
	}
}

// Run starts the frame and metadata loops. It returns immediately; use
// Stop to shut down.
func (p *Pump) Run(ctx context.Context) {
	p.wg.Add(2)
	go p.frameLoop(ctx)
	go p.metadataLoop(ctx)
}

// Stop halts both loops and releases the capturer. Idempotent.
func (p *Pump) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
	p.capturer.Close()
}

func (p *Pump) frameLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.frameInterval)
	defer ticker.Stop()

	log := trace.Logger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			imgData, changed := p.capturer.Capture()
			if !changed || imgData == nil {
				continue
			}
			p.deliverFrame(ctx, log, imgData)
		}
	}
}

func (p *Pump) deliverFrame(ctx context.Context, log *slog.Logger, imgData []byte) {
	img, buf, err := decodeFrame(imgData)
	if err != nil {
		log.Warn("frame decode failed", "error", err)
		return
	}

	app, err := p.metadata.Frontmost(ctx)
	if err != nil {
		log.Debug("frontmost query failed, using last known app", "error", err)
		app = p.lastKnownApp()
	} else {
		p.rememberApp(app)
	}

	text := ""
	if p.extractor != nil && !p.similarToPrevious(img) {
		extracted, err := p.extractor.ExtractText(ctx, imgData, "jpeg")
		if err != nil {
			log.Debug("text extraction failed", "error", err)
		} else if len(extracted) >= MinTextLength {
			text = extracted
		}
	}

	p.ingest.HandleFrame(ctx, segment.FrameUpdate{
		Frame: buf,
		App:   app,
		Text:  text,
		Time:  time.Now(),
	})
}

func (p *Pump) metadataLoop(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.metadataInterval)
	defer ticker.Stop()

	log := trace.Logger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			app, err := p.metadata.Frontmost(ctx)
			if err != nil {
				log.Debug("frontmost query failed", "error", err)
				continue
			}
			p.rememberApp(app)
			p.ingest.HandleMetadata(ctx, segment.MetadataUpdate{App: app, Time: time.Now()})
		}
	}
}

// similarToPrevious computes a perceptual hash and reports whether the
// frame is visually close enough to the previous one to skip text
// extraction.
func (p *Pump) similarToPrevious(img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastHash == nil {
		p.lastHash = hash
		return false
	}
	dist, err := p.lastHash.Distance(hash)
	if err != nil {
		p.lastHash = hash
		return false
	}
	if dist <= MaxHashDistance {
		return true
	}
	p.lastHash = hash
	return false
}

func (p *Pump) rememberApp(app event.AppContext) {
	p.mu.Lock()
	p.lastApp = app
	p.mu.Unlock()
}

func (p *Pump) lastKnownApp() event.AppContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastApp
}

// decodeFrame decodes encoded image bytes into both the decoded image
// (for hashing) and a pixel buffer (for comparison).
func decodeFrame(data []byte) (image.Image, *frame.Buffer, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CaptureDecodeFailed, "image decode failed")
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return img, &frame.Buffer{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    rgba.Pix,
	}, nil
}
