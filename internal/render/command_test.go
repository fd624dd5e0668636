package render

import (
	"strings"
	"testing"

	"deckforge/internal/deck"
)

func intPtr(v int) *int { return &v }

func testBuilder() Builder {
	return Builder{Binary: "generate-card", Model: "sdxl", Style: "mtg_modern"}
}

func testOptions() Options {
	return Options{RenderedDir: "/deck/rendered_cards", ArtworkDir: "/deck/artwork"}
}

func findFlag(args []string, flag string) (string, bool) {
	for i, arg := range args {
		if arg == flag {
			if i+1 < len(args) {
				return args[i+1], true
			}
			return "", true
		}
	}
	return "", false
}

func TestBuildAlwaysIncludesTextEvenForLands(t *testing.T) {
	card := &deck.Card{Name: "Forest", TypeLine: "Basic Land — Forest", Rarity: "common"}
	cmd, warnings := testBuilder().Build(card, testOptions())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	text, ok := findFlag(cmd.Args, "--text")
	if !ok {
		t.Fatalf("expected --text flag, args: %v", cmd.Args)
	}
	if text != "" {
		t.Fatalf("expected empty text value, got %q", text)
	}
	if _, ok := findFlag(cmd.Args, "--cost"); ok {
		t.Fatalf("land command must not include --cost, args: %v", cmd.Args)
	}
}

func TestBuildFormatsManaCost(t *testing.T) {
	card := &deck.Card{Name: "Izzet Charm", TypeLine: "Instant", ManaCost: "2UR", Rarity: "uncommon"}
	cmd, _ := testBuilder().Build(card, testOptions())
	cost, ok := findFlag(cmd.Args, "--cost")
	if !ok {
		t.Fatalf("expected --cost flag, args: %v", cmd.Args)
	}
	if cost != "{2}{U}{R}" {
		t.Fatalf("cost = %q, want {2}{U}{R}", cost)
	}
}

func TestBuildCreaturePowerToughness(t *testing.T) {
	card := &deck.Card{
		Name:      "Grizzly Bears",
		TypeLine:  "Creature — Bear",
		ManaCost:  "1G",
		Power:     intPtr(2),
		Toughness: intPtr(2),
		Rarity:    "common",
	}
	cmd, warnings := testBuilder().Build(card, testOptions())
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	power, ok := findFlag(cmd.Args, "--power")
	if !ok || power != "2" {
		t.Fatalf("power = %q (present %v), args: %v", power, ok, cmd.Args)
	}
	toughness, ok := findFlag(cmd.Args, "--toughness")
	if !ok || toughness != "2" {
		t.Fatalf("toughness = %q (present %v), args: %v", toughness, ok, cmd.Args)
	}
}

func TestBuildCreatureMissingToughnessWarnsButEmitsPower(t *testing.T) {
	card := &deck.Card{
		Name:     "Broken Golem",
		TypeLine: "Artifact Creature — Golem",
		Power:    intPtr(3),
		Rarity:   "rare",
	}
	cmd, warnings := testBuilder().Build(card, testOptions())
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %v", warnings)
	}
	if power, ok := findFlag(cmd.Args, "--power"); !ok || power != "3" {
		t.Fatalf("expected best-effort --power 3, args: %v", cmd.Args)
	}
	if _, ok := findFlag(cmd.Args, "--toughness"); ok {
		t.Fatalf("did not expect --toughness, args: %v", cmd.Args)
	}
}

func TestBuildOutputDirectoriesAlwaysPresent(t *testing.T) {
	card := &deck.Card{Name: "Opt", TypeLine: "Instant", Rarity: "common"}
	cmd, _ := testBuilder().Build(card, testOptions())
	if dir, ok := findFlag(cmd.Args, "--output"); !ok || dir != "/deck/rendered_cards" {
		t.Fatalf("output dir = %q (present %v)", dir, ok)
	}
	if dir, ok := findFlag(cmd.Args, "--images-output"); !ok || dir != "/deck/artwork" {
		t.Fatalf("images output dir = %q (present %v)", dir, ok)
	}
	if model, ok := findFlag(cmd.Args, "--model"); !ok || model != "sdxl" {
		t.Fatalf("model = %q (present %v)", model, ok)
	}
	if style, ok := findFlag(cmd.Args, "--style"); !ok || style != "mtg_modern" {
		t.Fatalf("style = %q (present %v)", style, ok)
	}
}

func TestBuildCustomImageTakesPrecedenceOverSkipImage(t *testing.T) {
	card := &deck.Card{Name: "Opt", TypeLine: "Instant", Rarity: "common"}
	opts := testOptions()
	opts.SkipImage = true
	opts.CustomImage = "/deck/artwork/Opt.png"
	cmd, _ := testBuilder().Build(card, opts)
	if path, ok := findFlag(cmd.Args, "--custom-image"); !ok || path != "/deck/artwork/Opt.png" {
		t.Fatalf("custom image = %q (present %v)", path, ok)
	}
	if _, ok := findFlag(cmd.Args, "--skip-image"); ok {
		t.Fatalf("--skip-image must be suppressed when a custom image is set, args: %v", cmd.Args)
	}
}

func TestBuildSkipImage(t *testing.T) {
	card := &deck.Card{Name: "Opt", TypeLine: "Instant", Rarity: "common"}
	opts := testOptions()
	opts.SkipImage = true
	cmd, _ := testBuilder().Build(card, opts)
	if _, ok := findFlag(cmd.Args, "--skip-image"); !ok {
		t.Fatalf("expected --skip-image, args: %v", cmd.Args)
	}
}

func TestBuildOmitsEmptyOptionalFields(t *testing.T) {
	card := &deck.Card{Name: "Opt", TypeLine: "Instant", Rarity: "common"}
	cmd, _ := testBuilder().Build(card, testOptions())
	for _, flag := range []string{"--flavor", "--art", "--custom-image", "--skip-image"} {
		if _, ok := findFlag(cmd.Args, flag); ok {
			t.Errorf("did not expect %s, args: %v", flag, cmd.Args)
		}
	}
}

func TestDisplayQuotesArguments(t *testing.T) {
	cmd := Command{Binary: "generate-card", Args: []string{"--name", "Serra Angel", "--text", ""}}
	display := cmd.Display()
	if !strings.Contains(display, `"Serra Angel"`) {
		t.Fatalf("expected quoted name in %q", display)
	}
	if !strings.HasSuffix(display, `""`) {
		t.Fatalf("expected empty arg rendered as quotes in %q", display)
	}
}
