// Command pcblaser converts an image of a printed circuit board pattern
// into G-code for a laser-equipped CNC or 3D printer controller, exposing
// photoresist or ink mask by tracing shape perimeters (vector mode) or
// scanning fixed-pitch lines (linear mode).
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"pcblaser/pkg/gcode"
	"pcblaser/pkg/geom"
	"pcblaser/pkg/imaging"
	"pcblaser/pkg/offset"
	"pcblaser/pkg/plan"
	"pcblaser/pkg/shape"
	"pcblaser/pkg/trace"
)

func main() {
	imagePath := flag.String("image", "", "path to the input image (png, jpg, bmp, svg)")
	gcodePath := flag.String("gcode", "output.gcode", "path to the output G-code file")
	imageXMM := flag.Float64("image-x-mm", 0, "physical image width (mm)")
	imageYMM := flag.Float64("image-y-mm", 0, "physical image height (mm)")
	laserMM := flag.Float64("laser-mm", 0.1, "laser dot size (mm)")
	mode := flag.String("mode", "vector", "toolpath mode: vector or linear")
	dwellMS := flag.Int("dwell-ms", 100, "dwell after laser off (ms)")
	travelFeed := flag.Int("travel-feed", 1500, "feed rate for rapid moves (mm/min)")
	engraveFeed := flag.Int("engrave-feed", 900, "feed rate for engrave moves (mm/min)")
	headerPath := flag.String("header", "", "file with custom G-code prologue")
	footerPath := flag.String("footer", "", "file with custom G-code epilogue")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := plan.Config{
		ImageWidthMM:  *imageXMM,
		ImageHeightMM: *imageYMM,
		LaserDiameter: *laserMM,
		Mode:          plan.Mode(*mode),
		LaserOffLag:   time.Duration(*dwellMS) * time.Millisecond,
		TravelFeed:    *travelFeed,
		EngraveFeed:   *engraveFeed,
		Header:        readSnippet(*headerPath),
		Footer:        readSnippet(*footerPath),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	img, err := imaging.Load(*imagePath)
	if err != nil {
		log.Fatalf("failed to load image: %v", err)
	}
	gray := imaging.Grayscale(img)

	pxW, pxH := gray.Bounds().Dx(), gray.Bounds().Dy()
	mmPerDot, err := scaleFactor(pxW, pxH, cfg.ImageWidthMM, cfg.ImageHeightMM)
	if err != nil {
		log.Fatal(err)
	}

	threshold := imaging.Otsu(gray)
	pixelContours, err := trace.Contours(gray, threshold)
	if err != nil {
		log.Fatalf("failed to vectorize image: %v", err)
	}
	contours := make([]geom.Contour, len(pixelContours))
	for i, c := range pixelContours {
		contours[i] = c.Scale(mmPerDot)
	}

	fmt.Printf("Working with image: %s\n", *imagePath)
	fmt.Printf("Size of image, px: %d x %d\n", pxW, pxH)
	fmt.Printf("Size of image, mm: %.2f x %.2f\n", cfg.ImageWidthMM, cfg.ImageHeightMM)
	fmt.Printf("Thickness of laser, mm: %g\n", cfg.LaserDiameter)
	fmt.Printf("Contours found: %d\n", len(contours))
	fmt.Printf("Working in %s mode\n", cfg.Mode)

	forest, warns := shape.Build(contours, nil)
	for _, w := range warns {
		log.Printf("warning: %v", w)
	}

	offs := offset.Forest(forest, cfg.LaserDiameter)
	events, err := plan.Generate(cfg, forest, offs)
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create(*gcodePath)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer out.Close()
	if err := gcode.Write(out, events, gcode.Options{
		TravelFeed:  cfg.TravelFeed,
		EngraveFeed: cfg.EngraveFeed,
		Header:      cfg.Header,
		Footer:      cfg.Footer,
	}); err != nil {
		log.Fatalf("failed to write G-code: %v", err)
	}

	fmt.Printf("Gcode file generated: %s\n", *gcodePath)
}

// scaleFactor derives the single pixel-to-millimeter factor and rejects
// sizes that would deform the image. Getting this wrong stretches the
// board, so both estimated alternatives are spelled out for the user.
func scaleFactor(pxW, pxH int, widthMM, heightMM float64) (float64, error) {
	perDotX := widthMM / float64(pxW)
	perDotY := heightMM / float64(pxH)
	if math.Abs(perDotX-perDotY) > perDotX*1e-6 {
		return 0, fmt.Errorf(
			"image size is not proportional to its pixel dimensions %dx%d: "+
				"X given as %gmm (estimate from Y: %gmm), Y given as %gmm (estimate from X: %gmm)",
			pxW, pxH, widthMM, perDotY*float64(pxW), heightMM, perDotX*float64(pxH))
	}
	return perDotX, nil
}

func readSnippet(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read G-code snippet: %v", err)
	}
	return string(data)
}
