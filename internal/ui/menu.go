package ui

import (
	"fmt"
	"os"
)

type menuOption struct {
	title   string
	handler func()
}

// ShowMenu displays the main menu and handles user input
func ShowMenu() {
	menuOptions := []menuOption{
		{"Map the flood extent between a pre and a post event date", DetectFlood},
		{"Inspect the Otsu threshold of a single scene", InspectThreshold},
		{"Follow the flood progression over several dates", FloodProgression},
		{"Create a flood susceptibility dataset", CreateDataset},
		{"Evaluate classifiers on a dataset", EvaluateClassifier},
		{"Map flood susceptibility with a trained classifier", PredictSusceptibility},
		{"View the list of available regions", ListRegions},
		{"Exit the application", func() { fmt.Println("Exiting..."); os.Exit(0) }},
	}

	for {
		fmt.Println("\033[34m===================\033[0m")
		for i, opt := range menuOptions {
			fmt.Printf("\033[34m%d. %s\033[0m\n", i+1, opt.title)
		}

		choice, err := ReadInt("Please enter your choice: ", 1, len(menuOptions))
		if err != nil {
			PrintError(err.Error())
			continue
		}

		menuOptions[choice-1].handler()
	}
}
