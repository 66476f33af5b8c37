package termrender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatSpec(t *testing.T) {
	t.Run("full spec", func(t *testing.T) {
		fs, err := ParseFormatSpec("|10.^5#ff0000+z2")
		require.NoError(t, err)

		require.NotNil(t, fs.HAlign)
		assert.Equal(t, AlignCenter, *fs.HAlign)
		require.NotNil(t, fs.Width)
		assert.Equal(t, 10, *fs.Width)
		require.NotNil(t, fs.VAlign)
		assert.Equal(t, AlignTop, *fs.VAlign)
		require.NotNil(t, fs.Height)
		assert.Equal(t, 5, *fs.Height)
		require.NotNil(t, fs.Alpha)
		assert.True(t, fs.Alpha.HasBackground)
		assert.InDelta(t, 1.0, fs.Alpha.Background.R, 0.001)
		assert.Equal(t, "z2", fs.Suffix)
	})

	t.Run("empty spec", func(t *testing.T) {
		fs, err := ParseFormatSpec("")
		require.NoError(t, err)
		assert.Nil(t, fs.HAlign)
		assert.Nil(t, fs.Width)
		assert.Nil(t, fs.Alpha)
		assert.Empty(t, fs.Suffix)
	})

	t.Run("alpha variants", func(t *testing.T) {
		fs, err := ParseFormatSpec("#.25")
		require.NoError(t, err)
		require.NotNil(t, fs.Alpha)
		assert.False(t, fs.Alpha.Disabled)
		assert.InDelta(t, 0.25, fs.Alpha.Threshold, 0.001)

		fs, err = ParseFormatSpec("##")
		require.NoError(t, err)
		require.NotNil(t, fs.Alpha)
		assert.True(t, fs.Alpha.Disabled)

		fs, err = ParseFormatSpec("#")
		require.NoError(t, err)
		require.NotNil(t, fs.Alpha)
		assert.False(t, fs.Alpha.Disabled)
		assert.True(t, fs.Alpha.TerminalBackground)
		assert.InDelta(t, DefaultAlphaThreshold, fs.Alpha.Threshold, 0.001)
	})

	t.Run("alignment variants", func(t *testing.T) {
		tests := []struct {
			spec string
			h    HAlign
			v    VAlign
		}{
			{"<.^", AlignLeft, AlignTop},
			{">._", AlignRight, AlignBottom},
			{"|.-", AlignCenter, AlignMiddle},
		}
		for _, tt := range tests {
			fs, err := ParseFormatSpec(tt.spec)
			require.NoError(t, err, tt.spec)
			require.NotNil(t, fs.HAlign, tt.spec)
			require.NotNil(t, fs.VAlign, tt.spec)
			assert.Equal(t, tt.h, *fs.HAlign, tt.spec)
			assert.Equal(t, tt.v, *fs.VAlign, tt.spec)
		}
	})

	t.Run("invalid spec names the offending portion", func(t *testing.T) {
		_, err := ParseFormatSpec("1.1.")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"."`)

		_, err = ParseFormatSpec("x20")
		require.Error(t, err)
	})

	t.Run("padding defaults to centered", func(t *testing.T) {
		fs, err := ParseFormatSpec("20.10")
		require.NoError(t, err)
		pad := fs.Padding()
		assert.Equal(t, AlignCenter, pad.HAlign)
		assert.Equal(t, AlignMiddle, pad.VAlign)
		assert.Equal(t, 20, pad.Width)
		assert.Equal(t, 10, pad.Height)
	})
}
