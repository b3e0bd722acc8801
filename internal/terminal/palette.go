package terminal

import "github.com/gdamore/tcell/v2"

// Palette holds the styles for one color scheme.
type Palette struct {
	Background tcell.Style
	Border     tcell.Style
	Player     tcell.Style
	AI         tcell.Style
	Ball       tcell.Style
	Well       tcell.Style
	WellActive tcell.Style
	HUD        tcell.Style
	Banner     tcell.Style
}

var darkPalette = Palette{
	Background: tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)),
	Border:     tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorGray),
	Player:     tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorDodgerBlue),
	AI:         tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorRed),
	Ball:       tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorWhite),
	Well:       tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorPurple),
	WellActive: tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorFuchsia).Bold(true),
	HUD:        tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorSilver),
	Banner:     tcell.StyleDefault.Background(tcell.NewRGBColor(17, 24, 39)).Foreground(tcell.ColorYellow).Bold(true),
}

var lightPalette = Palette{
	Background: tcell.StyleDefault.Background(tcell.ColorWhite),
	Border:     tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorDarkGray),
	Player:     tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlue),
	AI:         tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorMaroon),
	Ball:       tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack),
	Well:       tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorPurple),
	WellActive: tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorDarkMagenta).Bold(true),
	HUD:        tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack),
	Banner:     tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorGreen).Bold(true),
}
