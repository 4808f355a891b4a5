package ui

import (
	"context"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/notification"
	"github.com/Vibencrypt/COD492/internal/properties"
)

// PredictSusceptibility handles the UI for mapping flood susceptibility
func PredictSusceptibility() {
	PrintWarning(fmt.Sprintf("The classifier sidecar should be listening at %s.\nThe model is trained on every row of the selected dataset.", properties.ClassifierAddr()))

	path, err := SelectDataset()
	if err != nil {
		PrintError(err.Error())
		return
	}
	configs, err := readModelConfigs(false)
	if err != nil {
		PrintError(err.Error())
		return
	}
	region, id, err := ReadRegion()
	if err != nil {
		PrintError(err.Error())
		return
	}
	date, err := ReadDate("Enter the end of the weather history (YYYY-MM-DD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	cellSize, err := ReadFloat("Enter the map resolution in metres [300]: ", 300)
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

	run, err := delivery.PredictSusceptibility(context.Background(), client, delivery.PredictRequest{
		Region:      region,
		RegionID:    id,
		DatasetPath: path,
		Config:      configs[0],
		Date:        date,
		WindowDays:  1,
		CellSize:    cellSize,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error mapping susceptibility: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Flood mapping CLI\n\nError mapping susceptibility in %s: %s", region, err.Error()))
		return
	}
	PrintSusceptibility(run)
}
