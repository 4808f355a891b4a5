package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/notification"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/ui"
	"github.com/spf13/cobra"
)

var (
	region        string
	regionID      string
	preDate       string
	postDate      string
	postDates     string
	windowDays    int
	adjustment    float64
	speckleRadius float64
	policyName    string
	edgeGuided    bool
	points        int
	seed          int64
	datasetPath   string
	trainingRatio int
	trees         []int
	classifier    string
	gamma         float64
	cost          float64
	forestSize    int
	cellSize      float64
	maxSlope      float64
)

func addRegionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&region, "region", "kosi", "Region file name under data/regions")
	cmd.Flags().StringVar(&regionID, "region-id", "", "region_id of the feature to use (default is every feature)")
	cmd.Flags().IntVar(&windowDays, "window", 12, "Acquisition window length in days")
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&adjustment, "adjustment", 0, "Offset in dB added to every computed threshold")
	cmd.Flags().Float64Var(&speckleRadius, "speckle", 0, "Focal median radius in pixels applied before thresholding")
	cmd.Flags().BoolVar(&edgeGuided, "edges", false, "Build the histograms from the pixels near long water edges only")
}

func addEventFlags(cmd *cobra.Command) {
	addRegionFlags(cmd)
	addPipelineFlags(cmd)
	cmd.Flags().StringVar(&preDate, "pre", "", "Pre-event window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&postDate, "post", "", "Post-event window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&policyName, "on-degenerate", "borrow", "Homogeneous scene handling: propagate or borrow")
	cmd.Flags().Float64Var(&maxSlope, "max-slope", 0, "Drop flooded pixels on DEM slopes of at least this many degrees (0 keeps all)")
	cmd.MarkFlagRequired("pre")
	cmd.MarkFlagRequired("post")
}

func pipeline() properties.Pipeline {
	p := properties.DefaultPipeline()
	p.Adjustment = adjustment
	p.SpeckleRadius = speckleRadius
	return p
}

func floodRequest() (delivery.FloodRequest, error) {
	pre, err := time.Parse(time.DateOnly, preDate)
	if err != nil {
		return delivery.FloodRequest{}, fmt.Errorf("invalid --pre: %w", err)
	}
	post, err := time.Parse(time.DateOnly, postDate)
	if err != nil {
		return delivery.FloodRequest{}, fmt.Errorf("invalid --post: %w", err)
	}
	policy, err := flood.ParseDegeneratePolicy(policyName)
	if err != nil {
		return delivery.FloodRequest{}, err
	}
	return delivery.FloodRequest{
		Region:     region,
		RegionID:   regionID,
		PreStart:   pre,
		PostStart:  post,
		WindowDays: windowDays,
		Policy:     policy,
		EdgeGuided: edgeGuided,
		Pipeline:   pipeline(),
		MaxSlope:   maxSlope,
	}, nil
}

func addClassifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset CSV file")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&classifier, "classifier", "rf", "Classifier: rf (random forest) or svm (RBF kernel)")
	cmd.Flags().Float64Var(&gamma, "gamma", ml.DefaultGamma, "SVM RBF kernel gamma")
	cmd.Flags().Float64Var(&cost, "cost", ml.DefaultCost, "SVM cost")
	cmd.MarkFlagRequired("dataset")
}

func notifyError(action string, err error) error {
	notification.SendDiscordErrorNotification(fmt.Sprintf("Flood mapping CLI\n\nError %s in %s: %s", action, region, err.Error()))
	return err
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Map the flood extent between a pre and a post event window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		req, err := floodRequest()
		if err != nil {
			return err
		}
		run, err := delivery.DetectFlood(ctx, req)
		if err != nil {
			return notifyError("detecting flood", err)
		}
		ui.PrintFloodRun(run)
		return nil
	},
}

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Print the Otsu threshold and best splits of a single scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		start, err := time.Parse(time.DateOnly, preDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		st, err := delivery.ThresholdScene(ctx, region, regionID, start, windowDays, pipeline(), edgeGuided)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		ui.PrintThreshold(st, top)
		return nil
	},
}

var progressionCmd = &cobra.Command{
	Use:   "progression",
	Short: "Map the flood at several post-event windows against one baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		baseline, err := time.Parse(time.DateOnly, preDate)
		if err != nil {
			return fmt.Errorf("invalid --baseline: %w", err)
		}
		dates, err := ui.ParseDates(postDates)
		if err != nil {
			return err
		}
		policy, err := flood.ParseDegeneratePolicy(policyName)
		if err != nil {
			return err
		}
		steps, frames, err := delivery.Progression(ctx, delivery.ProgressionRequest{
			Region:        region,
			RegionID:      regionID,
			BaselineStart: baseline,
			PostStarts:    dates,
			WindowDays:    windowDays,
			Policy:        policy,
			EdgeGuided:    edgeGuided,
			Pipeline:      pipeline(),
		})
		if err != nil {
			return notifyError("building progression", err)
		}
		ui.PrintProgression(steps, frames)
		return nil
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Sample a flood susceptibility dataset from one flood event",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if points < 1 {
			return fmt.Errorf("--points must be positive, got %d", points)
		}
		req, err := floodRequest()
		if err != nil {
			return err
		}
		path, samples, err := delivery.CreateSusceptibilityDataset(ctx, delivery.DatasetRequest{
			FloodRequest: req,
			Points:       points,
			Seed:         seed,
		})
		if err != nil {
			return notifyError("creating dataset", err)
		}
		ui.PrintDatasetSummary(samples)
		ui.PrintSuccess(fmt.Sprintf("Dataset created successfully at: %s", path))
		notification.SendDiscordSuccessNotification(fmt.Sprintf("Flood mapping CLI\n\nDataset created successfully!\n\nFile: %s", path))
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Train and score random forests of several sizes, or an SVM, on a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		configs, err := delivery.ModelConfigs(classifier, trees, gamma, cost, seed)
		if err != nil {
			return err
		}
		client, err := ml.NewClient(properties.ClassifierAddr())
		if err != nil {
			return err
		}
		defer client.Close()

		rows, err := delivery.EvaluateClassifier(ctx, client, delivery.EvaluateRequest{
			DatasetPath:   datasetPath,
			TrainingRatio: trainingRatio,
			Seed:          seed,
			Configs:       configs,
		})
		if err != nil {
			return err
		}
		ui.PrintEvaluation(rows)
		out, err := delivery.SaveEvaluation(rows, datasetPath)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Evaluation saved at: %s", out))
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Train one classifier on a dataset and map flood susceptibility over a region",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		date, err := time.Parse(time.DateOnly, postDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		configs, err := delivery.ModelConfigs(classifier, []int{forestSize}, gamma, cost, seed)
		if err != nil {
			return err
		}
		client, err := ml.NewClient(properties.ClassifierAddr())
		if err != nil {
			return err
		}
		defer client.Close()

		run, err := delivery.PredictSusceptibility(ctx, client, delivery.PredictRequest{
			Region:      region,
			RegionID:    regionID,
			DatasetPath: datasetPath,
			Config:      configs[0],
			Date:        date,
			WindowDays:  windowDays,
			CellSize:    cellSize,
		})
		if err != nil {
			return notifyError("mapping susceptibility", err)
		}
		ui.PrintSusceptibility(run)
		return nil
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the available regions",
	Run: func(cmd *cobra.Command, args []string) {
		ui.ListRegions()
	},
}

func init() {
	addEventFlags(detectCmd)

	addRegionFlags(thresholdCmd)
	addPipelineFlags(thresholdCmd)
	thresholdCmd.Flags().StringVar(&preDate, "date", "", "Window start (YYYY-MM-DD)")
	thresholdCmd.Flags().Int("top", 5, "Number of best splits to print")
	thresholdCmd.MarkFlagRequired("date")

	addRegionFlags(progressionCmd)
	addPipelineFlags(progressionCmd)
	progressionCmd.Flags().StringVar(&preDate, "baseline", "", "Baseline window start (YYYY-MM-DD)")
	progressionCmd.Flags().StringVar(&postDates, "dates", "", "Comma separated post-event window starts")
	progressionCmd.Flags().StringVar(&policyName, "on-degenerate", "borrow", "Homogeneous scene handling: propagate or borrow")
	progressionCmd.MarkFlagRequired("baseline")
	progressionCmd.MarkFlagRequired("dates")

	addEventFlags(datasetCmd)
	datasetCmd.Flags().IntVar(&points, "points", 5000, "Number of random points")
	datasetCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	addClassifierFlags(evaluateCmd)
	evaluateCmd.Flags().IntVar(&trainingRatio, "ratio", 70, "Training ratio in percent")
	evaluateCmd.Flags().IntSliceVar(&trees, "trees", ui.DefaultTreeCounts, "Random forest sizes to compare")

	addRegionFlags(predictCmd)
	addClassifierFlags(predictCmd)
	predictCmd.Flags().StringVar(&postDate, "date", "", "DEM window start and end of the weather history (YYYY-MM-DD)")
	predictCmd.Flags().IntVar(&forestSize, "trees", 100, "Random forest size")
	predictCmd.Flags().Float64Var(&cellSize, "cell-size", 300, "Map resolution in metres")
	predictCmd.MarkFlagRequired("date")
}
