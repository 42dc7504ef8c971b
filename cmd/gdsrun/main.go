// Command gdsrun drives a CSV import through the concurrency core's
// bounded-concurrency driver, grounded on cmd/superagent/main.go's
// flag-based CLI shape.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs" // sets GOMAXPROCS from the cgroup CPU quota.

	"dev.helix.gds/internal/concurrency"
	"dev.helix.gds/internal/csvimport"
	"dev.helix.gds/internal/metrics"
)

var (
	dir            = flag.String("dir", ".", "Directory to scan for <prefix>-header.csv / <prefix>-part-NNN.csv files")
	prefix         = flag.String("prefix", "", "Schema file prefix (required)")
	concurrencyN   = flag.Int("concurrency", 4, "Number of files to import concurrently")
	waitMillis     = flag.Int64("wait-millis", 100, "Milliseconds to sleep between stalled submit attempts")
	maxWaitRetries = flag.Int64("max-wait-retries", 250_000_000, "Maximum consecutive stalled submit attempts before failing")
	metricsAddr    = flag.String("metrics-addr", "", "Optional address to serve /metrics on, e.g. :9090")
)

func main() {
	flag.Parse()
	log := logrus.StandardLogger()

	if *prefix == "" {
		fmt.Fprintln(os.Stderr, "gdsrun: -prefix is required")
		flag.Usage()
		os.Exit(2)
	}

	conc, err := concurrency.New(*concurrencyN)
	if err != nil {
		log.WithError(err).Fatal("invalid -concurrency")
	}

	poolMetrics := metrics.NewPoolMetrics()
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.WithField("addr", *metricsAddr).Info("serving metrics")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	sizes, err := concurrency.FixedPoolSizes(conc.Value())
	if err != nil {
		log.WithError(err).Fatal("invalid pool sizing")
	}
	pool := concurrency.NewWorkerPool("gdsrun", sizes,
		concurrency.WithLogger(log),
		concurrency.WithMetrics(poolMetrics),
	)
	defer pool.Shutdown()

	schemaPath := csvimport.HeaderPath(*dir, *prefix)
	schema, err := csvimport.LoadSchema(schemaPath)
	if err != nil {
		log.WithError(err).Fatal("loading schema")
	}

	files, err := csvimport.DiscoverDataFiles(*dir, *prefix)
	if err != nil {
		log.WithError(err).Fatal("discovering data files")
	}

	start := time.Now()
	opts := csvimport.Options{WaitMillis: *waitMillis, MaxWaitRetries: *maxWaitRetries}
	result, err := csvimport.Import(*dir, *prefix, conc, pool, opts, func(lineNumber int, record []string) error {
		if len(record) != len(schema.Columns) {
			return fmt.Errorf("line %d: expected %d columns, got %d", lineNumber, len(schema.Columns), len(record))
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		log.WithError(err).Fatal("import failed to start")
	}

	printSummary(result, files, elapsed)
}

func printSummary(result *csvimport.ImportResult, files []string, elapsed time.Duration) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"FILE", "ROWS"})
	table.SetAutoWrapText(false)
	for _, f := range files {
		table.Append([]string{f, fmt.Sprintf("%d", result.RowsByFile[f])})
	}
	table.Render()

	fmt.Println()
	if result.Err != nil {
		fmt.Printf("%s rows=%d rejected=%d elapsed=%s: %s\n",
			color.RedString("FAIL"), result.RowsRead, result.RowsRejected, elapsed, result.Err)
		os.Exit(1)
	}
	fmt.Printf("%s rows=%d rejected=%d elapsed=%s\n",
		color.GreenString("OK"), result.RowsRead, result.RowsRejected, elapsed)
}
