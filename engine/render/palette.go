package render

import "image/color"

// Palette holds the debug colors
type Palette struct {
	Background color.RGBA
	Bounds     color.RGBA
	Obstacle   color.RGBA
	GridCell   color.RGBA
	TreeEdge   color.RGBA
	Path       color.RGBA
	Waypoint   color.RGBA
	Agent      color.RGBA
	Selected   color.RGBA
	Trail      color.RGBA
	Goal       color.RGBA
}

var DefaultPalette = Palette{
	Background: color.RGBA{18, 20, 24, 255},
	Bounds:     color.RGBA{200, 200, 200, 255},
	Obstacle:   color.RGBA{105, 105, 105, 255}, // dark gray
	GridCell:   color.RGBA{255, 80, 80, 40},
	TreeEdge:   color.RGBA{80, 160, 255, 90},
	Path:       color.RGBA{255, 60, 60, 255},
	Waypoint:   color.RGBA{255, 215, 0, 255}, // gold
	Agent:      color.RGBA{34, 200, 34, 255},
	Selected:   color.RGBA{0, 255, 0, 200},
	Trail:      color.RGBA{34, 200, 34, 80},
	Goal:       color.RGBA{255, 0, 255, 255},
}
