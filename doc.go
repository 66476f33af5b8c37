/*
Package termrender renders images and animations in the terminal.

A Renderable produces frames; a Style turns pixels into terminal output
(halfblocks glyphs, or the Kitty, iTerm2 and Sixel graphics protocols);
Draw puts frames on screen, playing animations in place.

	img, err := termrender.Open("gopher.gif")
	if err != nil {
		log.Fatal(err)
	}
	defer img.Close()

	if err := termrender.Draw(img, termrender.DefaultDrawOptions); err != nil {
		log.Fatal(err)
	}

Render sizes are resolved against the terminal's cell geometry by
ResolveSize, so images keep their aspect ratio whether a cell maps to a 1x2
glyph block or to a block of device pixels. Per-style render parameters
travel in RenderArgs namespaces bound to the style's RenderClass; animations
are driven by RenderIterator, either directly, through Draw, or through the
bubbletea AnimationModel.
*/
package termrender
