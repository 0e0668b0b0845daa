// Command dap-client prepares a DAP report for one measurement and either
// writes it out or uploads it to the task's leader.
//
// # Configuration File
//
//	task:
//	  task_id: "<unpadded base64url>"
//	  leader_endpoint: "https://leader.example/"  # only needed with upload
//	  time_precision: 3600
//	  vdaf:
//	    scheme: sumvec     # count, sum, sumvec, histogram
//	    length: 4
//	    bits: 8
//	    chunk_length: 2
//	leader_hpke_config_list: leader.hpke
//	helper_hpke_config_list: helper.hpke
//	upload: false
//	output: report.bin
//	log:
//	  level: info
//	  format: text
//
// # Usage
//
//	go run ./cmd/dap-client --config=client.yaml --measurement=1,2,3,4
//	go run ./cmd/dap-client --config=client.yaml --measurement=true --upload
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/divviup/divviup-android/client"
	"github.com/divviup/divviup-android/cmd/common"
	"github.com/divviup/divviup-android/protocol"
	"github.com/divviup/divviup-android/vdaf"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML config file")
		taskID        = flag.String("task-id", "", "Task ID (unpadded base64url)")
		leaderURL     = flag.String("leader", "", "Leader endpoint URL")
		leaderConfigs = flag.String("leader-configs", "", "File with the leader's encoded HPKE config list")
		helperConfigs = flag.String("helper-configs", "", "File with the helper's encoded HPKE config list")
		scheme        = flag.String("vdaf", "", "VDAF scheme: count, sum, sumvec, histogram")
		measurement   = flag.String("measurement", "", "Measurement: bool, integer, or comma-separated integers")
		output        = flag.String("output", "", "Report output file, - for stdout")
		upload        = flag.Bool("upload", false, "Upload the report to the leader")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	var cfg *common.Config
	var err error

	if *configPath != "" {
		cfg, err = common.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg = common.DefaultConfig()
	}

	// Command-line flags override config file
	if *taskID != "" {
		id, err := protocol.ParseTaskID(*taskID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid task ID: %v\n", err)
			os.Exit(1)
		}
		cfg.Task.TaskID = id
	}
	if *leaderURL != "" {
		cfg.Task.LeaderEndpoint = *leaderURL
	}
	if *leaderConfigs != "" {
		cfg.LeaderHpkeConfigList = *leaderConfigs
	}
	if *helperConfigs != "" {
		cfg.HelperHpkeConfigList = *helperConfigs
	}
	if *scheme != "" {
		s, err := vdaf.ParseScheme(*scheme)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid VDAF: %v\n", err)
			os.Exit(1)
		}
		cfg.Task.Vdaf.Scheme = s
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *upload {
		cfg.Upload = true
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	log, err := common.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *measurement, log); err != nil {
		log.Error("report failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, measurement string, log *slog.Logger) error {
	leaderConfigs, err := common.ReadConfigList(cfg.LeaderHpkeConfigList)
	if err != nil {
		return err
	}
	helperConfigs, err := common.ReadConfigList(cfg.HelperHpkeConfigList)
	if err != nil {
		return err
	}
	r := &runner{cfg: cfg, leaderConfigs: leaderConfigs, helperConfigs: helperConfigs, log: log}

	params := cfg.Task.Vdaf
	switch params.Scheme {
	case vdaf.SchemeCount:
		m, err := strconv.ParseBool(measurement)
		if err != nil {
			return fmt.Errorf("%w: count measurement: %v", protocol.ErrInvalidParameter, err)
		}
		v, err := vdaf.NewPrio3Count()
		if err != nil {
			return err
		}
		return send[bool](ctx, r, v, m)

	case vdaf.SchemeSum:
		m, err := parseInt(measurement)
		if err != nil {
			return err
		}
		v, err := vdaf.NewPrio3Sum(params.Bits)
		if err != nil {
			return err
		}
		return send[int64](ctx, r, v, m)

	case vdaf.SchemeSumVec:
		m, err := common.ParseIntList(measurement)
		if err != nil {
			return err
		}
		v, err := vdaf.NewPrio3SumVec(params.Length, params.Bits, params.ChunkLength)
		if err != nil {
			return err
		}
		return send[[]int64](ctx, r, v, m)

	case vdaf.SchemeHistogram:
		m, err := parseInt(measurement)
		if err != nil {
			return err
		}
		v, err := vdaf.NewPrio3Histogram(params.Length, params.ChunkLength)
		if err != nil {
			return err
		}
		return send[int64](ctx, r, v, m)

	default:
		return fmt.Errorf("%w: unknown VDAF scheme %v", protocol.ErrInvalidParameter, params.Scheme)
	}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: measurement: %v", protocol.ErrInvalidParameter, err)
	}
	return v, nil
}

type runner struct {
	cfg           *common.Config
	leaderConfigs []byte
	helperConfigs []byte
	log           *slog.Logger
}

func send[M any](ctx context.Context, r *runner, v vdaf.Client[M], measurement M) error {
	c, err := client.NewClient[M](r.cfg.Task, v, r.leaderConfigs, r.helperConfigs, client.ClientOptions{
		Options: client.Options{Log: r.log},
	})
	if err != nil {
		return err
	}

	if r.cfg.Upload {
		uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := c.SendMeasurement(uploadCtx, measurement); err != nil {
			return err
		}
		r.log.Info("report uploaded", "task_id", r.cfg.Task.TaskID.String(), "leader", r.cfg.Task.LeaderEndpoint)
		return nil
	}

	report, err := c.PrepareMeasurement(measurement)
	if err != nil {
		return err
	}
	if r.cfg.Output == "" || r.cfg.Output == "-" {
		_, err = os.Stdout.Write(report)
		return err
	}
	if err := os.WriteFile(r.cfg.Output, report, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.log.Info("report written", "path", r.cfg.Output, "size", len(report))
	return nil
}
