package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tinymahjong/internal/config"
	"tinymahjong/internal/dom"
	"tinymahjong/internal/rules"
	"tinymahjong/internal/zone"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4")).Width(18)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	flagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	openStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	frozenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#45475a")).Padding(0, 1)
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	server := flag.String("server", cfg.Client.ServerURL, "authority base URL")
	tableID := flag.String("table", cfg.Client.Table, "table id")
	file := flag.String("file", "", "read markup from a file instead of the server")
	flag.Parse()

	markup, err := load(*server, *tableID, *file)
	if err != nil {
		fail(err)
	}
	doc, err := dom.ParseString(markup)
	if err != nil {
		fail(err)
	}
	fmt.Println(render(zone.Scan(doc)))
}

func load(server, tableID, file string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		return string(b), err
	}
	if tableID == "" {
		return "", fmt.Errorf("either -table or -file is required")
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(strings.TrimRight(server, "/") + "/markup/" + tableID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("markup: %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	return string(b), err
}

func render(zones []zone.Zone) string {
	if len(zones) == 0 {
		return dimStyle.Render("no zones")
	}
	lines := []string{headerStyle.Render(fmt.Sprintf("%d zones", len(zones)))}
	for _, z := range zones {
		lines = append(lines, describe(z))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func describe(z zone.Zone) string {
	var b strings.Builder
	b.WriteString(idStyle.Render(z.ID))

	offer := rules.Offers(z.Ref.Kind, z.Flags)
	switch offer.Mode {
	case rules.Frozen:
		b.WriteString(frozenStyle.Render("frozen"))
	case rules.Clone:
		b.WriteString(openStyle.Render("clone"))
	default:
		b.WriteString(openStyle.Render("→ " + kinds(offer.To)))
	}
	b.WriteString(dimStyle.Render("  ← " + kinds(rules.Accepts(z.Ref.Kind, z.Flags))))

	if z.Ordered() {
		b.WriteString(dimStyle.Render("  ordered"))
	}
	for _, f := range z.Rule.Reads {
		if z.Flags.Has(f) {
			b.WriteString("  " + flagStyle.Render(string(f)))
		}
	}

	items := dom.Items(z.Node)
	var movable []string
	for _, it := range items {
		if zone.Draggable(z.Node, z.Rule, it) {
			movable = append(movable, dom.ID(it))
		}
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d tiles", len(items))))
	if len(movable) > 0 && len(movable) < len(items) {
		b.WriteString(dimStyle.Render(" (movable: " + strings.Join(movable, ",") + ")"))
	}
	return b.String()
}

func kinds(s rules.Set) string {
	if len(s) == 0 {
		return "∅"
	}
	names := make([]string, 0, len(s))
	for _, k := range s.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ",")
}

func fail(err error) {
	fmt.Println(err.Error())
	os.Exit(1)
}
