package captions

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
)

const (
	// assHeader is the script info and the single style every caption uses:
	// white Impact 100, black 5px outline, bottom-centre, 30px margin.
	assHeader = `
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Impact,100,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,5,0,2,10,10,30,1
`
	eventsHeader = `
[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`
)

// WriteASS writes a complete subtitle script and returns the number of
// dialogue lines written.
func WriteASS(w io.Writer, cues iter.Seq[Cue]) (int, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(assHeader + eventsHeader); err != nil {
		return 0, err
	}
	count := 0
	for cue := range cues {
		if _, err := fmt.Fprintf(bw, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			FormatTimestamp(cue.Start), FormatTimestamp(cue.End), cue.Text); err != nil {
			return count, err
		}
		count++
	}
	return count, bw.Flush()
}

// WriteASSFile writes cues to path, replacing any existing file.
func WriteASSFile(path string, cues []Cue) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	if _, err := WriteASS(file, slices.Values(cues)); err != nil {
		_ = file.Close()
		return fmt.Errorf("write subtitle file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close subtitle file: %w", err)
	}
	return nil
}
