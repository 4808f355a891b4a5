package ui

import (
	"context"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/notification"
)

// CreateDataset handles the UI for creating a flood susceptibility dataset
func CreateDataset() {
	PrintWarning("The resultant dataset will be created at data/datasets folder.\nThe flood extent of the given event labels every sampled point.")

	req, err := readFloodRequest()
	if err != nil {
		PrintError(err.Error())
		return
	}
	points, err := ReadPositiveInt("Enter the number of random points: ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	seed, err := ReadFloat("Enter the random seed [42]: ", 42)
	if err != nil {
		PrintError(err.Error())
		return
	}

	path, samples, err := delivery.CreateSusceptibilityDataset(context.Background(), delivery.DatasetRequest{
		FloodRequest: req,
		Points:       points,
		Seed:         int64(seed),
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error creating dataset: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Flood mapping CLI\n\nError creating dataset: %s", err.Error()))
		return
	}

	PrintDatasetSummary(samples)
	PrintSuccess(fmt.Sprintf("Dataset created successfully at: %s", path))
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Flood mapping CLI\n\nDataset created successfully!\n\nFile: %s", path))
}
