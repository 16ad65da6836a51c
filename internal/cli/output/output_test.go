package output

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"text", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"JSON", ModeJSON},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"bogus", ModeAuto},
	}
	for _, tt := range tests {
		if got := Mode(tt.in); got != tt.want {
			t.Errorf("Mode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer
	tty := NewRendererWithTTY(&buf, &buf, true, ModeAuto)
	if tty.EffectiveMode() != ModeText {
		t.Errorf("TTY auto = %q, want text", tty.EffectiveMode())
	}

	piped := NewRendererWithTTY(&buf, &buf, false, ModeAuto)
	if piped.EffectiveMode() != ModeMarkdown {
		t.Errorf("piped auto = %q, want markdown", piped.EffectiveMode())
	}

	forced := NewRendererWithTTY(&buf, &buf, false, ModeJSON)
	if forced.EffectiveMode() != ModeJSON {
		t.Errorf("forced = %q, want json", forced.EffectiveMode())
	}
}

func TestMarkdownOutputHasNoANSI(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeMarkdown)

	r.Header(1, "Objects")
	r.Success("built")
	r.StatusLine("dbo.Account", "success", "tables/Account.sql")
	r.Table([]string{"Object", "Kind"}, [][]string{{"[dbo].[Account]", "SqlTable"}})

	combined := out.String() + errOut.String()
	if ansiPattern.MatchString(combined) {
		t.Errorf("markdown output contains ANSI codes: %q", combined)
	}
	if !strings.Contains(out.String(), "# Objects") {
		t.Errorf("missing markdown header: %q", out.String())
	}
	if !strings.Contains(out.String(), "| Object |") {
		t.Errorf("missing markdown table header: %q", out.String())
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatHeader(2, "Summary"); got != "## Summary" {
		t.Errorf("FormatHeader = %q", got)
	}
	if got := FormatKeyValue("Package", "bin/Warehouse.dacpac"); got != "- **Package**: bin/Warehouse.dacpac" {
		t.Errorf("FormatKeyValue = %q", got)
	}
}
