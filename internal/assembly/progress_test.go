package assembly

import "testing"

func TestProgressParserEmitsBlocks(t *testing.T) {
	p := &progressParser{}
	lines := []string{
		"frame=120",
		"out_time_us=5000000",
		"out_time=00:00:05.000000",
		"speed=2.1x",
		"progress=continue",
		"out_time_ms=10000000",
		"progress=end",
	}
	var blocks []Progress
	for _, line := range lines {
		if block, ok := p.Feed(line); ok {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].OutTimeSeconds != 5 || blocks[0].Speed != "2.1x" || blocks[0].Done {
		t.Fatalf("unexpected first block %+v", blocks[0])
	}
	if got := blocks[0].Percent(20); got != 25 {
		t.Fatalf("expected 25%%, got %v", got)
	}
	if !blocks[1].Done || blocks[1].Percent(0) != 100 {
		t.Fatalf("unexpected final block %+v", blocks[1])
	}
}

func TestProgressPercentUnknownDuration(t *testing.T) {
	if got := (Progress{OutTimeSeconds: 3}).Percent(0); got != -1 {
		t.Fatalf("expected unknown percent, got %v", got)
	}
	if got := (Progress{OutTimeSeconds: 30}).Percent(10); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestProgressParserIgnoresNegativeTimes(t *testing.T) {
	p := &progressParser{}
	p.Feed("out_time_us=-9223372036854775807")
	block, ok := p.Feed("progress=continue")
	if !ok || block.OutTimeSeconds != 0 {
		t.Fatalf("expected zeroed time, got %+v", block)
	}
}
