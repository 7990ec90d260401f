package assembly

import (
	"fmt"
	"strconv"
	"strings"
)

// Caption alignment values in ASS numpad layout.
const (
	AlignBottomCenter = 2
	AlignMiddleCenter = 5
)

// Style describes how burned-in captions look.
type Style struct {
	FontName      string
	FontSize      int
	PrimaryColour string
	OutlineColour string
	Outline       int
	Alignment     int
}

// ForceStyle renders the libass force_style override list.
func (s Style) ForceStyle() string {
	parts := []string{
		"FontName=" + s.FontName,
		"FontSize=" + strconv.Itoa(s.FontSize),
		"PrimaryColour=" + s.PrimaryColour,
		"OutlineColour=" + s.OutlineColour,
		"BorderStyle=1",
		"Outline=" + strconv.Itoa(s.Outline),
		"Alignment=" + strconv.Itoa(s.Alignment),
	}
	return strings.Join(parts, ",")
}

// Graph is a built filter_complex along with the output labels to map.
type Graph struct {
	Filter   string
	VideoOut string
	AudioOut string
}

// GraphInput parameterizes BuildFilterGraph. Input 0 is the background video,
// input 1 the narration, input 2 the optional background audio.
type GraphInput struct {
	CaptionsPath     string
	Width            int
	Height           int
	TargetWidth      int
	TargetHeight     int
	Style            Style
	Speed            float64
	BackgroundAudio  bool
	BackgroundVolume float64
}

// BuildFilterGraph assembles the caption burn, optional rescale, speed change,
// and audio mix into one filter_complex description.
func BuildFilterGraph(in GraphInput) Graph {
	speed := in.Speed
	if speed <= 0 {
		speed = 1
	}

	video := fmt.Sprintf("[0:v]subtitles=filename=%s:original_size=%dx%d:force_style=%s",
		filterValue(in.CaptionsPath), in.Width, in.Height, filterValue(in.Style.ForceStyle()))
	if in.TargetWidth > 0 && in.TargetHeight > 0 {
		video += fmt.Sprintf(",scale=%d:%d", in.TargetWidth, in.TargetHeight)
	}
	if speed != 1 {
		video += ",setpts=PTS/" + formatFactor(speed)
	}
	video += "[v]"

	chains := []string{video}
	tempo := AtempoChain(speed)
	graph := Graph{VideoOut: "[v]"}

	switch {
	case in.BackgroundAudio:
		narration := "[1:a]volume=1.0"
		background := "[2:a]volume=" + formatFactor(in.BackgroundVolume)
		if tempo != "" {
			narration += "," + tempo
			background += "," + tempo
		}
		chains = append(chains,
			narration+"[n]",
			background+"[b]",
			"[n][b]amix=inputs=2:duration=shortest:normalize=0[a]",
		)
		graph.AudioOut = "[a]"
	case tempo != "":
		chains = append(chains, "[1:a]"+tempo+"[a]")
		graph.AudioOut = "[a]"
	default:
		graph.AudioOut = "1:a"
	}

	graph.Filter = strings.Join(chains, ";")
	return graph
}

// AtempoChain splits factor into atempo links that each stay within the
// filter's [0.5, 2.0] range. Returns "" for a factor of 1.
func AtempoChain(factor float64) string {
	if factor <= 0 || factor == 1 {
		return ""
	}
	var links []string
	for factor > 2.0 {
		links = append(links, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		links = append(links, "atempo=0.5")
		factor /= 0.5
	}
	if factor != 1 {
		links = append(links, "atempo="+formatFactor(factor))
	}
	return strings.Join(links, ",")
}

func formatFactor(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// filterValue escapes an option value for use inside a filter graph. The
// option parser treats \ ' : as special; the graph parser then sees the
// result inside single quotes, where only ' needs breaking out.
func filterValue(value string) string {
	optionLevel := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`).Replace(value)
	return "'" + strings.ReplaceAll(optionLevel, "'", `'\''`) + "'"
}
