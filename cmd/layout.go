package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/kozaktomas/appraisal-gallery/internal/classify"
	"github.com/kozaktomas/appraisal-gallery/internal/config"
	"github.com/kozaktomas/appraisal-gallery/internal/gallery"
	"github.com/kozaktomas/appraisal-gallery/internal/geometry"
	"github.com/kozaktomas/appraisal-gallery/internal/preview"
	"github.com/kozaktomas/appraisal-gallery/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

var layoutCmd = &cobra.Command{
	Use:   "layout <manifest.json | image-dir>",
	Short: "Lay out report photos into gallery pages",
	Long: `Detect the orientation of every photo and lay the photos out into
portrait and landscape gallery pages.

The input is either a JSON manifest with photos, text sections and document
fields, or a directory of images (photos are taken in file name order).

Examples:
  # Print a page table for a directory of photos
  appraisal-gallery layout ./photos

  # Print page descriptors as JSON
  appraisal-gallery layout report.json --json

  # Write the export report and an HTML print preview
  appraisal-gallery layout report.json --report --html preview.html`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().Bool("json", false, "Output page descriptors as JSON")
	layoutCmd.Flags().Bool("report", false, "Output the export report as JSON")
	layoutCmd.Flags().String("html", "", "Write an HTML print preview to this file")
	layoutCmd.Flags().Int("concurrency", 0, "Number of photos probed in parallel (defaults to PROBE_CONCURRENCY)")
	layoutCmd.Flags().String("documentary-status", "", "Documentary status text (overrides the manifest)")
	layoutCmd.Flags().String("influencing-factors", "", "Influencing factors text (overrides the manifest)")
}

// manifest is the JSON input of the layout command.
type manifest struct {
	Photos   []gallery.Photo      `json:"photos"`
	Text     gallery.TextSections `json:"text"`
	Document gallery.Document     `json:"document"`
}

// layoutOutput is printed by --json.
type layoutOutput struct {
	RunID string                   `json:"run_id"`
	Pages []gallery.PageDescriptor `json:"pages"`
	Plan  report.PlanSummary       `json:"plan"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	reportOutput := mustGetBool(cmd, "report")
	htmlPath := mustGetString(cmd, "html")
	if jsonOutput && reportOutput {
		return errors.New("--json and --report are mutually exclusive")
	}

	cfg := config.Load()
	if n := mustGetInt(cmd, "concurrency"); n > 0 {
		cfg.Probe.Concurrency = n
	}

	engine, err := gallery.NewEngine(cfg.EngineOptions())
	if err != nil {
		return fmt.Errorf("invalid layout configuration: %w", err)
	}

	in, err := loadInput(args[0])
	if err != nil {
		return err
	}
	if s := mustGetString(cmd, "documentary-status"); s != "" {
		in.Text.DocumentaryStatus = s
	}
	if s := mustGetString(cmd, "influencing-factors"); s != "" {
		in.Text.InfluencingFactors = s
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet := jsonOutput || reportOutput || !shouldColorize(os.Stderr)
	classified, err := classifyPhotos(ctx, cfg.Probe, in.Photos, quiet)
	if err != nil {
		return fmt.Errorf("classifying photos: %w", err)
	}

	layout := geometry.FromPage(cfg.Layout.Page)
	run, err := report.Compose(engine, layout, classified,
		gallery.NewTextSections(in.Text.DocumentaryStatus, in.Text.InfluencingFactors),
		in.Document)
	if err != nil {
		return fmt.Errorf("laying out photos: %w", err)
	}

	if htmlPath != "" {
		if err := writePreview(htmlPath, run, layout); err != nil {
			return err
		}
		if !jsonOutput && !reportOutput {
			fmt.Printf("Preview written to %s\n", htmlPath)
		}
	}

	switch {
	case jsonOutput:
		err = outputJSON(layoutOutput{RunID: run.ID, Pages: run.Pages, Plan: report.Summarize(run.Plan)})
	case reportOutput:
		err = outputJSON(run.Report())
	default:
		printLayout(run, shouldColorize(os.Stdout))
	}
	if err != nil {
		return err
	}
	return checkGeometry(run)
}

// checkGeometry fails the command when a slot leaves the canvas or overlaps
// another one. Undersized text blocks only warn.
func checkGeometry(run *report.Run) error {
	if !geometry.HasErrors(run.Warnings) {
		return nil
	}
	errCount := 0
	for _, w := range run.Warnings {
		if w.Severity == "error" {
			errCount++
		}
	}
	return fmt.Errorf("layout does not fit the page: %d geometry error(s)", errCount)
}

// loadInput reads a manifest file or scans an image directory.
func loadInput(path string) (manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return manifest{}, fmt.Errorf("reading input: %w", err)
	}

	var in manifest
	if info.IsDir() {
		photos, err := scanImageDir(path)
		if err != nil {
			return manifest{}, err
		}
		in.Photos = photos
	} else {
		in, err = readManifest(path)
		if err != nil {
			return manifest{}, err
		}
	}

	in.Photos = gallery.AssignMissingIDs(in.Photos)
	return in, nil
}

func readManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	var in manifest
	if err := json.Unmarshal(data, &in); err != nil {
		return manifest{}, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	// Relative photo paths are relative to the manifest.
	base := filepath.Dir(path)
	for i, p := range in.Photos {
		if p.SourceURL == "" {
			return manifest{}, fmt.Errorf("photo %d: source_url is required", i)
		}
		in.Photos[i].SourceURL = resolveLocal(base, p.SourceURL)
		if p.AnnotatedURL != "" {
			in.Photos[i].AnnotatedURL = resolveLocal(base, p.AnnotatedURL)
		}
	}
	return in, nil
}

func resolveLocal(base, ref string) string {
	if strings.Contains(ref, ":") || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}

// scanImageDir lists supported images in dir in file name order.
func scanImageDir(dir string) ([]gallery.Photo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var photos []gallery.Photo
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		photos = append(photos, gallery.Photo{
			ID:        e.Name(),
			SourceURL: filepath.Join(dir, e.Name()),
		})
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	return photos, nil
}

func classifyPhotos(ctx context.Context, cfg config.ProbeConfig, photos []gallery.Photo, quiet bool) ([]gallery.Photo, error) {
	var opts []classify.Option
	bar := newProbeProgressBar(len(photos), quiet)
	if bar != nil {
		opts = append(opts, classify.WithProgress(func() { bar.Add(1) }))
	}

	classified, err := classify.FromConfig(cfg, opts...).Classify(ctx, photos)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	return classified, err
}

func newProbeProgressBar(count int, quiet bool) *progressbar.ProgressBar {
	if quiet || count == 0 {
		return nil
	}
	return progressbar.NewOptions(count,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Detecting orientation"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

func writePreview(path string, run *report.Run, layout geometry.LayoutConfig) error {
	f, err := os.Create(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return fmt.Errorf("creating preview file: %w", err)
	}
	if err := preview.Render(f, run, layout); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing preview file: %w", err)
	}
	return nil
}

// layoutRows turns the page sequence into table rows.
func layoutRows(pages []gallery.PageDescriptor) [][]string {
	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		photos := ""
		if p.Kind.IsPhoto() {
			photos = strconv.Itoa(len(p.Photos))
			if len(p.Merged) > 0 {
				photos += " + " + strconv.Itoa(len(p.Merged))
			}
		}
		text := ""
		if p.Text != nil {
			text = "yes"
		}
		rows = append(rows, []string{strconv.Itoa(p.Number), string(p.Kind), p.Section, photos, text})
	}
	return rows
}

func printLayout(run *report.Run, colorize bool) {
	fmt.Println(renderTable(
		[]string{"Page", "Kind", "Section", "Photos", "Text"},
		layoutRows(run.Pages),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))

	summary := report.Summarize(run.Plan)
	fmt.Printf("\nRun:             %s\n", run.ID)
	fmt.Printf("Pages:           %d\n", len(run.Pages))
	fmt.Printf("Portrait pages:  %d\n", len(summary.PortraitGroups))
	fmt.Printf("Landscape pages: %d\n", len(summary.LandscapeGroups))
	if summary.MergeApplied {
		fmt.Printf("Merged:          %d landscape photos onto the last portrait page\n", summary.MergedPhotos)
	}
	fmt.Printf("Text placement:  %s\n", summary.TextPlacement)

	warnings := run.Report().Warnings
	if len(warnings) > 0 {
		fmt.Printf("\n%s\n", colorWarn(fmt.Sprintf("Warnings: %d", len(warnings)), colorize))
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
