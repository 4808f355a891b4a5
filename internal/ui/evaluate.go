package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/properties"
)

// DefaultTreeCounts are the forest sizes compared by default.
var DefaultTreeCounts = []int{10, 50, 100, 200, 500}

// SelectDataset displays available datasets and returns the selected path
func SelectDataset() (string, error) {
	folder := filepath.Join(properties.RootPath(), "data", "datasets")

	files, err := os.ReadDir(folder)
	if err != nil {
		return "", fmt.Errorf("error reading datasets folder: %s", err.Error())
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no datasets found in the datasets folder")
	}

	fmt.Printf("%s\nAvailable datasets:%s\n", ColorGreen, ColorReset)
	for i, file := range files {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, file.Name(), ColorReset)
	}

	choice, err := ReadInt("Enter the number of the dataset you want to use: ", 1, len(files))
	if err != nil {
		return "", err
	}
	return filepath.Join(folder, files[choice-1].Name()), nil
}

// EvaluateClassifier handles the UI for the classifier evaluation
func EvaluateClassifier() {
	PrintWarning(fmt.Sprintf("The classifier sidecar should be listening at %s.", properties.ClassifierAddr()))

	path, err := SelectDataset()
	if err != nil {
		PrintError(err.Error())
		return
	}
	ratio, err := ReadInt("Enter the training ratio in percent (1-99): ", 1, 99)
	if err != nil {
		PrintError(err.Error())
		return
	}

	configs, err := readModelConfigs(true)
	if err != nil {
		PrintError(err.Error())
		return
	}

	client, err := ml.NewClient(properties.ClassifierAddr())
	if err != nil {
		PrintError(fmt.Sprintf("Error connecting to the classifier: %s", err.Error()))
		return
	}
	defer client.Close()

	rows, err := delivery.EvaluateClassifier(context.Background(), client, delivery.EvaluateRequest{
		DatasetPath:   path,
		TrainingRatio: ratio,
		Seed:          42,
		Configs:       configs,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error evaluating classifiers: %s", err.Error()))
		return
	}
	PrintEvaluation(rows)

	out, err := delivery.SaveEvaluation(rows, path)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintSuccess(fmt.Sprintf("Evaluation saved at: %s", out))
}

// readModelConfigs asks for the classifier and its parameters. With sweep
// set, a random forest is compared at every DefaultTreeCounts size.
func readModelConfigs(sweep bool) ([]ml.ModelConfig, error) {
	kind := ReadString("Enter the classifier, rf or svm [rf]: ")
	if kind == "" {
		kind = string(ml.RandomForest)
	}

	trees := DefaultTreeCounts
	gamma, cost := float64(ml.DefaultGamma), float64(ml.DefaultCost)
	var err error
	switch ml.Kind(kind) {
	case ml.RandomForest:
		if !sweep {
			n, err := ReadPositiveInt("Enter the number of trees: ")
			if err != nil {
				return nil, err
			}
			trees = []int{n}
		}
	case ml.SVM:
		if gamma, err = ReadFloat(fmt.Sprintf("Enter the RBF gamma [%g]: ", ml.DefaultGamma), ml.DefaultGamma); err != nil {
			return nil, err
		}
		if cost, err = ReadFloat(fmt.Sprintf("Enter the cost [%g]: ", float64(ml.DefaultCost)), ml.DefaultCost); err != nil {
			return nil, err
		}
	}
	return delivery.ModelConfigs(kind, trees, gamma, cost, 42)
}
