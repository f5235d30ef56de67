// renderer path-traces a scene into a resumable sample file, and optionally
// exports it as a PNG and uploads the results to GCS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	"row-major/boxtracer/progress"
	"row-major/boxtracer/render"
	"row-major/boxtracer/renderstats"
	"row-major/boxtracer/sampleimage"
	"row-major/boxtracer/scenepack"

	"cloud.google.com/go/profiler"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"
	googleopt "google.golang.org/api/option"
)

var (
	sceneName    = flag.String("scene", "builtin:cube-field", "Scene file to render, or builtin:<name> for a compiled-in scene")
	outputFile   = flag.String("output", "output.samples", "Output sample image")
	resume       = flag.Bool("resume", false, "Should we re-open the output file to add more samples?")
	outputRows   = flag.Int("rows", 675, "Output image rows")
	outputCols   = flag.Int("cols", 1200, "Output image columns")
	samples      = flag.Int("samples", 100, "Number of samples to collect for each pixel")
	maxDepth     = flag.Int("max-depth", 100, "Maximum number of bounces to consider")
	seed         = flag.Int64("seed", 1, "Seed for scene generation and sampling")
	parallelism  = flag.Int("parallelism", 0, "Number of row chunks to render at once; 0 means one per CPU")
	pngFile      = flag.String("png", "", "If set, also write a gamma-corrected PNG here")
	outputBucket = flag.String("output-bucket", "", "If set, upload the outputs to this GCS bucket")

	debugListen = flag.String("debug-listen", "", "If set, server address:port for debug endpoints (/healthz, /progress).")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
	profiling            = flag.Bool("profiling", false, "Enable Cloud Profiler?")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	glog.Infof("flags:")
	glog.Infof("scene: %q", *sceneName)
	glog.Infof("output: %q", *outputFile)
	glog.Infof("resume: %v", *resume)
	glog.Infof("rows: %d", *outputRows)
	glog.Infof("cols: %d", *outputCols)
	glog.Infof("samples: %d", *samples)
	glog.Infof("max-depth: %d", *maxDepth)
	glog.Infof("seed: %d", *seed)
	glog.Infof("png: %q", *pngFile)
	glog.Infof("output-bucket: %q", *outputBucket)
	glog.Infof("debug-listen: %q", *debugListen)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop rendering on interrupt, but still save what we have.
	go func() {
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		<-signalCh
		glog.Infof("Interrupted; finishing in-flight rows")
		cancel()
	}()

	if err := renderstats.RegisterViews(); err != nil {
		glog.Fatalf("Failed to register OpenCensus views: %v", err)
	}

	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}

		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			glog.Fatalf("Failed to install Cloud Trace OpenTelemetry trace pipeline: %v", err)
		}
		defer traceShutdown()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "boxtracer",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			glog.Fatalf("Failed to create Stackdriver metrics exporter: %v", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			glog.Fatalf("Failed to start Stackdriver metrics exporter: %v", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()
	}

	if *profiling {
		profilerConfig := profiler.Config{
			Service:        "boxtracer-renderer",
			ServiceVersion: "0.0.1",
			ProjectID:      *monitoringProject,
		}
		if err := profiler.Start(profilerConfig); err != nil {
			glog.Fatalf("Failed to start Cloud Profiler: %v", err)
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatalf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatalf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(ctx); err != nil {
		glog.Fatalf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	s, err := scenepack.Load(*sceneName, *seed)
	if err != nil {
		return fmt.Errorf("while loading scene: %w", err)
	}
	if len(s.Cameras) == 0 {
		return fmt.Errorf("scene %q has no camera", s.Name)
	}

	var sampleDB *sampleimage.SampleImage
	if *resume {
		sampleDB, err = sampleimage.ReadSampleImageFromFile(*outputFile)
		if err != nil {
			return fmt.Errorf("resumption requested, but encountered error loading existing file: %w", err)
		}

		if sampleDB.RowSize != *outputRows {
			return fmt.Errorf("resumption requested, but the existing sample image doesn't have the right number of rows (got %d, want %d)", sampleDB.RowSize, *outputRows)
		}

		if sampleDB.ColSize != *outputCols {
			return fmt.Errorf("resumption requested, but the existing sample image doesn't have the right number of columns (got %d, want %d)", sampleDB.ColSize, *outputCols)
		}
	} else {
		// Check that the output file doesn't exist, to avoid blowing away hours
		// of render time.
		if _, err := os.Stat(*outputFile); err == nil {
			return fmt.Errorf("resumption not requested, but output file exists")
		}

		sampleDB = &sampleimage.SampleImage{}
		sampleDB.Resize(*outputRows, *outputCols)
	}

	options := &render.RenderOptions{
		MaxDepth:         *maxDepth,
		TargetSubsamples: *samples,
		Parallelism:      *parallelism,
		Seed:             *seed,
	}

	// Draw a progress line for a human, otherwise log occasionally.
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	var tracker *progress.Tracker
	if interactive {
		tracker = progress.New(s.Name, func(snap progress.Snapshot) {
			fmt.Fprintf(os.Stderr, "\r%d/%d %d%% (%v remaining)    ", snap.Collected, snap.Total, snap.Percent(), snap.Remaining.Round(time.Second))
		}, 100*time.Millisecond)
	} else {
		tracker = progress.New(s.Name, func(snap progress.Snapshot) {
			glog.Infof("Progress: %d/%d samples (%d%%), %v elapsed, %v remaining", snap.Collected, snap.Total, snap.Percent(), snap.Elapsed.Round(time.Second), snap.Remaining.Round(time.Second))
		}, 30*time.Second)
	}

	if *debugListen != "" {
		debugServeMux := http.NewServeMux()
		debugServeMux.Handle("/healthz", progress.Healthz{})
		debugServeMux.Handle("/readyz", progress.Healthz{})
		debugServeMux.Handle("/progress", tracker)
		debugServer := &http.Server{
			Addr:    *debugListen,
			Handler: debugServeMux,

			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				glog.Errorf("Debug server died: %v", err)
			}
		}()
		defer debugServer.Close()
	}

	renderErr := render.RenderScene(ctx, s, s.Cameras[0], options, sampleDB, tracker.Report)
	if interactive {
		fmt.Fprintf(os.Stderr, "\n")
	}
	if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
		return fmt.Errorf("while rendering: %w", renderErr)
	}
	if renderErr != nil {
		glog.Warningf("Render interrupted; saving %d samples collected so far", sampleDB.TotalSamples())
	}

	outputs := []string{*outputFile}
	if err := writeOutput(*outputFile, func(w io.Writer) error {
		return sampleimage.WriteSampleImage(sampleDB, w)
	}); err != nil {
		return fmt.Errorf("while writing sample image: %w", err)
	}

	if *pngFile != "" {
		if err := writeOutput(*pngFile, func(w io.Writer) error {
			return sampleimage.WritePNG(sampleDB, w)
		}); err != nil {
			return fmt.Errorf("while writing png: %w", err)
		}
		outputs = append(outputs, *pngFile)
	}

	if *outputBucket != "" {
		// Uploads go ahead even if the render was interrupted.
		uploadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		gcs, err := storage.NewClient(uploadCtx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return fmt.Errorf("while creating GCS client: %w", err)
		}
		defer gcs.Close()

		for _, name := range outputs {
			if err := upload(uploadCtx, gcs, *outputBucket, name); err != nil {
				return fmt.Errorf("while uploading %s: %w", name, err)
			}
			glog.Infof("Uploaded %s to gs://%s/%s", name, *outputBucket, filepath.Base(name))
		}
	}

	if renderErr != nil {
		return fmt.Errorf("while rendering: %w", renderErr)
	}
	return nil
}

func writeOutput(name string, write func(io.Writer) error) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while opening output file: %w", err)
	}

	if err := write(out); err != nil {
		out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing output file: %w", err)
	}
	return nil
}

func upload(ctx context.Context, gcs *storage.Client, bucket, name string) error {
	in, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("while opening local file: %w", err)
	}
	defer in.Close()

	w := gcs.Bucket(bucket).Object(filepath.Base(name)).NewWriter(ctx)
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		return fmt.Errorf("while writing to object writer: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing object writer: %w", err)
	}
	return nil
}
