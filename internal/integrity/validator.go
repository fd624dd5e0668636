package integrity

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"deckforge/internal/services"
)

// DarkThreshold is the mean 8-bit brightness below which a band, or the
// whole card, counts as dark.
const DarkThreshold = 30.0

// bandNames follow the conventional card layout top to bottom.
var bandNames = [4]string{
	"top (title/cost)",
	"upper-middle (artwork)",
	"lower-middle (type/text)",
	"bottom (P/T)",
}

// Report holds the brightness measurements for one rendered card.
type Report struct {
	// Overall is the mean brightness of the whole image, 0 to 255.
	Overall float64
	// Bands are the per-band means in layout order.
	Bands [4]float64
}

// DarkBands lists the names of bands whose mean falls below the threshold.
func (r Report) DarkBands() []string {
	var dark []string
	for i, brightness := range r.Bands {
		if brightness < DarkThreshold {
			dark = append(dark, bandNames[i])
		}
	}
	return dark
}

// Corrupt reports whether the card is too dark overall to be usable.
func (r Report) Corrupt() bool {
	return r.Overall < DarkThreshold
}

// Inspect measures mean brightness overall and in four horizontal bands.
// The renderer can emit a near-black image while exiting cleanly; partitioning
// by layout region lets failure messages name the affected part of the card.
func Inspect(img image.Image) Report {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	height := bounds.Dy()

	var report Report
	var totalSum float64
	var totalCount int

	for band := 0; band < 4; band++ {
		yStart := bounds.Min.Y + band*height/4
		yEnd := bounds.Min.Y + (band+1)*height/4
		if band == 3 {
			yEnd = bounds.Max.Y
		}
		sum, count := bandBrightness(gray, yStart, yEnd)
		if count > 0 {
			report.Bands[band] = sum / float64(count)
		}
		totalSum += sum
		totalCount += count
	}
	if totalCount > 0 {
		report.Overall = totalSum / float64(totalCount)
	}
	return report
}

func bandBrightness(gray *image.NRGBA, yStart, yEnd int) (float64, int) {
	bounds := gray.Bounds()
	var sum float64
	var count int
	for y := yStart; y < yEnd; y++ {
		rowStart := gray.PixOffset(bounds.Min.X, y)
		rowEnd := gray.PixOffset(bounds.Max.X, y)
		for offset := rowStart; offset < rowEnd; offset += 4 {
			sum += float64(gray.Pix[offset])
			count++
		}
	}
	return sum, count
}

// Judge converts a report into the pass/warn/fail decision. A corrupt image
// returns an integrity error naming the dark bands; a bright image with dark
// bands passes and returns them as a warning signal.
func Judge(report Report) (warnings []string, err error) {
	dark := report.DarkBands()
	if report.Corrupt() {
		region := "entire card"
		if len(dark) > 0 {
			region = strings.Join(dark, ", ")
		}
		message := fmt.Sprintf("card corrupted (brightness %.1f/255, black in: %s)", report.Overall, region)
		return nil, services.Wrap(services.ErrIntegrity, "integrity", "judge", message, nil)
	}
	if len(dark) > 0 {
		warnings = append(warnings, "card has black regions in: "+strings.Join(dark, ", "))
	}
	return warnings, nil
}

// CheckFile loads the image at path and judges it in one step.
func CheckFile(path string) (Report, []string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Report{}, nil, services.Wrap(services.ErrIntegrity, "integrity", "open", "open artifact "+path, err)
	}
	report := Inspect(img)
	warnings, err := Judge(report)
	return report, warnings, err
}
