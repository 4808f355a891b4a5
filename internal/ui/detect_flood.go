package ui

import (
	"context"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/notification"
	"github.com/Vibencrypt/COD492/internal/properties"
)

func readFloodRequest() (delivery.FloodRequest, error) {
	var req delivery.FloodRequest

	PrintWarning("- A '.geojson' file with the region name should be present in data/regions folder.\n- Scenes are Sentinel-1 VV mosaics of the window starting at each date.")
	region, id, err := ReadRegion()
	if err != nil {
		return req, err
	}
	pre, err := ReadDate("Enter the pre-event window start (YYYY-MM-DD): ")
	if err != nil {
		return req, err
	}
	post, err := ReadDate("Enter the post-event window start (YYYY-MM-DD): ")
	if err != nil {
		return req, err
	}
	if !pre.Before(post) {
		return req, fmt.Errorf("the pre-event date must be before the post-event date")
	}
	days, err := ReadPositiveInt("Enter the window length in days: ")
	if err != nil {
		return req, err
	}
	pipeline, err := readPipeline()
	if err != nil {
		return req, err
	}
	policy, err := ReadPolicy()
	if err != nil {
		return req, err
	}
	maxSlope, err := ReadFloat("Enter the maximum DEM slope in degrees for flooded pixels, 0 keeps all [0]: ", 0)
	if err != nil {
		return req, err
	}

	return delivery.FloodRequest{
		Region:     region,
		RegionID:   id,
		PreStart:   pre,
		PostStart:  post,
		WindowDays: days,
		Policy:     policy,
		EdgeGuided: ReadYesNo("Restrict the histograms to the water edges? (y/n) [n]: ", false),
		Pipeline:   pipeline,
		MaxSlope:   maxSlope,
	}, nil
}

func readPipeline() (properties.Pipeline, error) {
	p := properties.DefaultPipeline()
	adjustment, err := ReadFloat("Enter the threshold adjustment in dB [0]: ", p.Adjustment)
	if err != nil {
		return p, err
	}
	p.Adjustment = adjustment
	radius, err := ReadFloat("Enter the speckle filter radius in pixels [0]: ", p.SpeckleRadius)
	if err != nil {
		return p, err
	}
	p.SpeckleRadius = radius
	return p, nil
}

// DetectFlood handles the UI for mapping a flood extent
func DetectFlood() {
	req, err := readFloodRequest()
	if err != nil {
		PrintError(err.Error())
		return
	}

	run, err := delivery.DetectFlood(context.Background(), req)
	if err != nil {
		PrintError(fmt.Sprintf("Error detecting flood: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Flood mapping CLI\n\nError detecting flood in %s: %s", req.Region, err.Error()))
		return
	}
	PrintFloodRun(run)
}

// InspectThreshold handles the UI for thresholding a single scene
func InspectThreshold() {
	region, id, err := ReadRegion()
	if err != nil {
		PrintError(err.Error())
		return
	}
	start, err := ReadDate("Enter the window start (YYYY-MM-DD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	days, err := ReadPositiveInt("Enter the window length in days: ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	pipeline, err := readPipeline()
	if err != nil {
		PrintError(err.Error())
		return
	}
	edgeGuided := ReadYesNo("Restrict the histogram to the water edges? (y/n) [n]: ", false)

	st, err := delivery.ThresholdScene(context.Background(), region, id, start, days, pipeline, edgeGuided)
	if err != nil {
		PrintError(fmt.Sprintf("Error computing threshold: %s", err.Error()))
		return
	}
	PrintThreshold(st, 5)
}

// FloodProgression handles the UI for following a flood over several dates
func FloodProgression() {
	region, id, err := ReadRegion()
	if err != nil {
		PrintError(err.Error())
		return
	}
	baseline, err := ReadDate("Enter the baseline window start (YYYY-MM-DD): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	dates, err := ParseDates(ReadString("Enter the post-event window starts, comma separated (YYYY-MM-DD,...): "))
	if err != nil {
		PrintError(err.Error())
		return
	}
	days, err := ReadPositiveInt("Enter the window length in days: ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	pipeline, err := readPipeline()
	if err != nil {
		PrintError(err.Error())
		return
	}
	policy, err := ReadPolicy()
	if err != nil {
		PrintError(err.Error())
		return
	}

	steps, frames, err := delivery.Progression(context.Background(), delivery.ProgressionRequest{
		Region:        region,
		RegionID:      id,
		BaselineStart: baseline,
		PostStarts:    dates,
		WindowDays:    days,
		Policy:        policy,
		Pipeline:      pipeline,
	})
	if err != nil {
		PrintError(fmt.Sprintf("Error building progression: %s", err.Error()))
		notification.SendDiscordErrorNotification(fmt.Sprintf("Flood mapping CLI\n\nError building progression for %s: %s", region, err.Error()))
		return
	}
	PrintProgression(steps, frames)
}
