package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/parttimenerd/hprof-redact/internal/hprof"
	"github.com/parttimenerd/hprof-redact/internal/hprof/hprofio"
	"github.com/parttimenerd/hprof-redact/internal/hprof/model"
	"github.com/parttimenerd/hprof-redact/internal/hprof/namekind"
	"github.com/parttimenerd/hprof-redact/internal/hprof/progress"
	"github.com/parttimenerd/hprof-redact/internal/hprof/transform"
)

var (
	filterInputPath    string
	filterOutputPath   string
	filterTransformer  string
	filterVerbose      bool
	filterShowProgress bool
	filterNoProgress   bool
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Rewrite an HPROF heap dump, redacting strings and/or primitive values",
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringVarP(&filterInputPath, "input", "i", "", "input HPROF file (required; gzip auto-detected)")
	filterCmd.Flags().StringVarP(&filterOutputPath, "output", "o", "", "output HPROF file, or \"-\" for stdout (required; \".gz\" suffix gzips it)")
	filterCmd.Flags().StringVarP(&filterTransformer, "transformer", "t", "zero", "transformer: zero, zero-strings, drop-strings")
	filterCmd.Flags().BoolVarP(&filterVerbose, "verbose", "v", false, "log every changed value and print a summary")
	filterCmd.Flags().BoolVar(&filterShowProgress, "progress", false, "force the live progress bar even when stdout isn't a terminal")
	filterCmd.Flags().BoolVar(&filterNoProgress, "no-progress", false, "disable the live progress bar even on a terminal")
	filterCmd.MarkFlagRequired("input")
	filterCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	if filterInputPath == "" || filterOutputPath == "" {
		return fmt.Errorf("--input and --output are required")
	}

	transformer, err := resolveTransformer(filterTransformer)
	if err != nil {
		return err
	}

	info, err := os.Stat(filterInputPath)
	if err != nil {
		return fmt.Errorf("statting input: %w", err)
	}
	totalBytes := info.Size()

	writingToStdout := filterOutputPath == "-"

	var out io.WriteCloser
	if writingToStdout {
		out = nopWriteCloser{os.Stdout}
	} else {
		out, err = hprofio.OpenOutput(filterOutputPath)
		if err != nil {
			return err
		}
	}
	defer out.Close()

	var verboseSink io.Writer
	if filterVerbose {
		verboseSink = os.Stderr
	}

	// The progress bar and the verbose summary both write to stdout;
	// when the rewritten stream itself goes to stdout, both would
	// corrupt it, so writing "-" as the output silently wins over
	// --progress.
	showProgress := !writingToStdout && (filterShowProgress || (!filterNoProgress && isatty.IsTerminal(os.Stdout.Fd())))
	summaryOut := io.Writer(os.Stdout)
	if writingToStdout {
		summaryOut = os.Stderr
	}

	opts := hprof.Options{}
	if verboseSink != nil {
		opts.OnChange = func(id model.ID, kind namekind.Kind, before, after string) {
			fmt.Fprintf(verboseSink, "changed id=%v kind=%v %q -> %q\n", id, kind, before, after)
		}
		opts.OnDecodeError = func(id model.ID, err *hprof.EncodingError) {
			fmt.Fprintf(verboseSink, "recovered id=%v: %v (kept original bytes)\n", id, err)
		}
	}

	var events chan progress.Event
	var progressErr chan error
	if showProgress {
		events = make(chan progress.Event, 16)
		opts.OnBytes = func(pass int, bytesRead int64) {
			select {
			case events <- progress.Event{Pass: pass, BytesRead: bytesRead, TotalBytes: totalBytes}:
			default:
			}
		}
		progressErr = make(chan error, 1)
		go func() { progressErr <- progress.Run(events) }()
	}

	opener := func() (io.ReadCloser, error) { return hprofio.OpenInput(filterInputPath) }
	stats, filterErr := hprof.Filter(opener, out, transformer, opts)

	if events != nil {
		close(events)
		<-progressErr
	}

	if filterErr != nil {
		return filterErr
	}

	if filterVerbose {
		progress.WriteSummary(summaryOut, stats, 60, 15)
	}
	return nil
}

// nopWriteCloser adapts os.Stdout to io.WriteCloser without closing the
// process's actual stdout when the filter driver's deferred Close runs.
type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func resolveTransformer(raw string) (*transform.Transformer, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", "-"))
	if normalized == "" {
		normalized = "zero"
	}
	switch normalized {
	case "zero":
		return transform.NewZero(), nil
	case "zero-strings":
		return transform.NewZeroStrings(), nil
	case "drop-strings":
		return transform.NewDropStrings(), nil
	default:
		return nil, fmt.Errorf("unknown transformer: %s", raw)
	}
}
