/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"os"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	termrender "github.com/blacktop/go-termrender"
)

var (
	verbose   bool
	styleName string
	format    string
	width     int
	height    int
	loops     int
	noAnim    bool
	scroll    bool
)

func init() {
	log.SetHandler(clihander.Default)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	rootCmd.Flags().StringVarP(&styleName, "style", "s", "", "Render style (halfblocks, kitty, iterm2, sixel)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "Render format spec (e.g. '|100.^#.5')")
	rootCmd.Flags().IntVarP(&width, "width", "W", 0, "Fix the width in columns")
	rootCmd.Flags().IntVarP(&height, "height", "H", 0, "Fix the height in lines")
	rootCmd.Flags().IntVarP(&loops, "loops", "l", -1, "Animation loop count (-1: forever)")
	rootCmd.Flags().BoolVarP(&noAnim, "no-animate", "n", false, "Show only the first frame of animations")
	rootCmd.Flags().BoolVar(&scroll, "scroll", false, "Allow renders taller than the terminal")
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imgcat <image>",
	Short: "Display images and animations in your terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		img, err := termrender.Open(args[0])
		if err != nil {
			return err
		}
		defer img.Close()

		if styleName != "" {
			style, err := termrender.SelectStyle(styleName)
			if err != nil {
				return err
			}
			img.SetStyle(style)
		}
		log.Debugf("style: %s", img.StyleName())

		switch {
		case width > 0:
			img.SetSizing(termrender.ExactWidth(width))
		case height > 0:
			img.SetSizing(termrender.ExactHeight(height))
		}

		opts := termrender.DefaultDrawOptions
		opts.Animate = !noAnim
		opts.Loops = loops
		opts.AllowScroll = scroll

		if format != "" {
			fs, err := termrender.ParseFormatSpec(format)
			if err != nil {
				return err
			}
			if _, err := img.SetFormat(format); err != nil {
				return err
			}
			opts.Padding = fs.Padding()
		}

		return termrender.Draw(img, opts)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
