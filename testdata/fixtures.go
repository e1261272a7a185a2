package testdata

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/airmouse/internal/detector"
)

//go:embed samples/*.jsonl
var samplesFS embed.FS

// Fixture screen size the sample fixtures were recorded against.
const (
	ScreenWidth  = 1080
	ScreenHeight = 2400
)

// LoadSamples loads a recorded sample sequence by name, without extension.
// Each line of the fixture is one JSON-encoded detector.Sample.
func LoadSamples(name string) ([]detector.Sample, error) {
	data, err := samplesFS.ReadFile("samples/" + name + ".jsonl")
	if err != nil {
		return nil, fmt.Errorf("load samples %s: %w", name, err)
	}

	var samples []detector.Sample
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var s detector.Sample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("decode samples %s line %d: %w", name, line, err)
		}
		samples = append(samples, s)
	}

	return samples, scanner.Err()
}

// SampleNames lists the available sample fixtures.
func SampleNames() ([]string, error) {
	entries, err := samplesFS.ReadDir("samples")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}

// MovingSquare renders a sequence of frames with a white square sliding
// across a black background, enough to trigger motion detection.
func MovingSquare(count, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	size := height / 4

	for i := 0; i < count; i++ {
		mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		x := (i * width / (count + 1)) % (width - size)
		square := mat.Region(image.Rect(x, height/2-size/2, x+size, height/2+size/2))
		square.SetTo(gocv.NewScalar(255, 255, 255, 0))
		square.Close()
		frames = append(frames, &mat)
	}

	return frames
}

// StillFrames renders identical uniform gray frames.
func StillFrames(count, width, height int) []*gocv.Mat {
	frames := make([]*gocv.Mat, 0, count)
	for i := 0; i < count; i++ {
		mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
		mat.SetTo(gocv.NewScalar(128, 128, 128, 0))
		frames = append(frames, &mat)
	}
	return frames
}
