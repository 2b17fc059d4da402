// Package annotate draws hand skeletons and finger counts onto frames.
package annotate

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingercount/internal/detector"
	"github.com/ayusman/fingercount/internal/fingers"
)

// Colours are given as RGBA; gocv converts them to BGR when drawing.
var (
	SkeletonColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	JointColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	HandTextColor = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	TotalColor    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	HintColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

const (
	lineThickness = 2
	jointRadius   = 5
	textScale     = 1.0
	hintScale     = 0.7
)

// Draw renders every hand's skeleton and count onto img, plus the frame
// total in the top-left corner. hands and frame.Hands are matched by slot;
// hands with a malformed point list are skipped.
func Draw(img *gocv.Mat, hands []detector.HandLandmarks, frame fingers.Frame) {
	if img == nil || img.Empty() {
		return
	}

	w, h := img.Cols(), img.Rows()

	for i := range hands {
		hand := &hands[i]
		if !hand.Valid() {
			continue
		}
		drawSkeleton(img, hand, w, h)

		if i < len(frame.Hands) {
			wrist := toPixel(hand.Points[detector.Wrist], w, h)
			label := fmt.Sprintf("Fingers: %d", frame.Hands[i].Smoothed)
			gocv.PutText(img, label, image.Pt(wrist.X, wrist.Y-20),
				gocv.FontHersheySimplex, textScale, HandTextColor, lineThickness)
		}
	}

	gocv.PutText(img, fmt.Sprintf("Total Fingers: %d", frame.Total), image.Pt(10, 30),
		gocv.FontHersheySimplex, textScale, TotalColor, lineThickness)
}

// DrawHint writes an instruction line at the bottom-left of img.
func DrawHint(img *gocv.Mat, text string) {
	if img == nil || img.Empty() || text == "" {
		return
	}
	gocv.PutText(img, text, image.Pt(10, img.Rows()-20),
		gocv.FontHersheySimplex, hintScale, HintColor, lineThickness)
}

func drawSkeleton(img *gocv.Mat, hand *detector.HandLandmarks, w, h int) {
	for _, c := range detector.HandConnections {
		gocv.Line(img, toPixel(hand.Points[c.From], w, h), toPixel(hand.Points[c.To], w, h),
			SkeletonColor, lineThickness)
	}
	for _, p := range hand.Points {
		gocv.Circle(img, toPixel(p, w, h), jointRadius, JointColor, -1)
	}
}

// toPixel converts a normalized landmark to pixel coordinates.
func toPixel(p detector.Point3D, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}
