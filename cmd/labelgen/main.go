// Command labelgen renders a batch of carton labels from a CSV of product
// rows and a label layout, writing one PNG per successful row.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelkit/labelgen/internal/barcode"
	"github.com/labelkit/labelgen/internal/batch"
	"github.com/labelkit/labelgen/internal/compose"
	"github.com/labelkit/labelgen/internal/config"
	"github.com/labelkit/labelgen/internal/job"
	"github.com/labelkit/labelgen/internal/layout"
	"github.com/labelkit/labelgen/internal/mapping"
	"github.com/labelkit/labelgen/internal/render"
	"github.com/labelkit/labelgen/internal/tabular"
	"github.com/labelkit/labelgen/internal/version"
)

var (
	cfgFile      string
	inputPath    string
	layoutPath   string
	outDir       string
	mapOverrides []string
)

var rootCmd = &cobra.Command{
	Use:     "labelgen",
	Short:   "Batch carton label generator",
	Version: version.Version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render labels for every row of a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runBatch(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./labelgen.yaml)")

	runCmd.Flags().StringVar(&inputPath, "input", "", "CSV file with product rows (required)")
	runCmd.Flags().StringVar(&layoutPath, "layout", "", "YAML layout descriptor (default: built-in carton layout)")
	runCmd.Flags().StringVar(&outDir, "out", "labels", "output directory for rendered PNGs")
	runCmd.Flags().StringArrayVar(&mapOverrides, "map", nil, "column mapping override, field=header (repeatable)")
	runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBatch(cfg *config.Config) error {
	desc, err := loadLayout()
	if err != nil {
		return err
	}

	store := job.NewStore()
	runID := store.Create(&job.Run{InputPath: inputPath, LayoutName: desc.Name})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.SetCancel(runID, cancel)
	defer store.ClearCancel(runID)

	// A first interrupt cancels cooperatively at the next row boundary.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Interrupt received, canceling after current row...")
		store.Cancel(runID)
	}()

	timings := batch.NewTimings()

	loadStart := time.Now()
	table, err := tabular.LoadFile(inputPath, tabular.Config{
		Delimiter: rune(cfg.Input.Delimiter[0]),
		Encoding:  cfg.Input.Encoding,
		MaxBytes:  cfg.Input.MaxBytes,
		MaxRows:   cfg.Input.MaxRows,
	})
	timings.ObserveLoad(time.Since(loadStart))
	if err != nil {
		store.UpdateError(runID, err)
		store.UpdateStatus(runID, job.StatusFailed)
		return err
	}
	store.SetTotal(runID, int64(len(table.Rows)))
	log.Printf("Loaded %d rows from %s", len(table.Rows), inputPath)

	m, err := buildMapping(table.Headers)
	if err != nil {
		store.UpdateError(runID, err)
		store.UpdateStatus(runID, job.StatusFailed)
		return err
	}

	normStart := time.Now()
	subjects := mapping.NormalizeAll(table.Rows, m)
	timings.ObserveNormalize(time.Since(normStart))

	client := barcode.NewClient(cfg.Barcode.Endpoint, cfg.Barcode.Timeout)
	client.ObserveHTTP = timings.ObserveBarcodeHTTP
	composer := compose.NewComposer(client, cfg.Barcode.Format)
	renderer := render.NewRowRenderer(composer, cfg.Render.ExportScale)
	runner := batch.NewRunner(renderer, timings)

	store.UpdateStatus(runID, job.StatusRunning)

	summary, err := runner.Run(ctx, subjects, desc, func(completed, total int) {
		log.Printf("Rendered %d/%d", completed, total)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Status was already set by store.Cancel.
			log.Printf("Batch canceled")
			return nil
		}
		store.UpdateError(runID, err)
		store.UpdateStatus(runID, job.StatusFailed)
		return err
	}

	store.UpdateProgress(runID, int64(summary.Successful), int64(summary.Failed))

	if err := os.MkdirAll(outDir, 0755); err != nil {
		store.UpdateError(runID, err)
		store.UpdateStatus(runID, job.StatusFailed)
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	sink := &dirSink{dir: outDir}
	if err := summary.Emit(sink); err != nil {
		store.UpdateError(runID, err)
		store.UpdateStatus(runID, job.StatusFailed)
		return err
	}

	for _, res := range summary.Errors() {
		log.Printf("Row %d (%s): %s", res.RowIndex+1, res.Name, res.Message)
	}
	log.Printf("Done: %d labels written, %d rows failed, %d total", summary.Successful, summary.Failed, summary.Total)
	log.Printf("Timings: %s", timings)

	store.UpdateStatus(runID, job.StatusSucceeded)
	return nil
}

func loadLayout() (*layout.Descriptor, error) {
	if layoutPath == "" {
		return layout.DefaultCarton(), nil
	}
	return layout.LoadFile(layoutPath)
}

// buildMapping proposes a mapping from headers, applies --map overrides,
// and refuses to continue while a mandatory field is unmapped.
func buildMapping(headers []string) (mapping.Mapping, error) {
	m := mapping.ProposeMapping(headers)

	for _, override := range mapOverrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid --map %q, expected field=header", override)
		}
		field := mapping.Field(parts[0])
		if _, ok := m[field]; !ok {
			return nil, fmt.Errorf("unknown field %q in --map", parts[0])
		}
		if parts[1] == "" {
			m.Clear(field)
		} else {
			m.Set(field, parts[1])
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w; map the missing columns with --map field=header", err)
	}
	return m, nil
}

// dirSink writes each successful label to <dir>/label-NNNN-<name>.png.
type dirSink struct {
	dir string
}

func (d *dirSink) AddPage(res render.Result) error {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, res.Name)

	path := filepath.Join(d.dir, fmt.Sprintf("label-%04d-%s.png", res.RowIndex+1, name))
	return os.WriteFile(path, res.PNG, 0644)
}
