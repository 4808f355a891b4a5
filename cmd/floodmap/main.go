package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/Vibencrypt/COD492/internal/notification"
	"github.com/Vibencrypt/COD492/internal/ui"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func printBanner() {
	figure1 := figure.NewFigure("Kosi", "isometric1", true)
	figure2 := figure.NewFigure("Flood", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}

	pc, file, line, ok := runtime.Caller(3)
	location := "Unknown location"
	if ok {
		location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
	}

	fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
	fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
	fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
	fmt.Printf("\033[31mExiting...\033[0m\n")

	errMessage := fmt.Sprintf("Flood mapping CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
	if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
		fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
	}
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "floodmap",
	Short: "Sentinel-1 flood mapping for the Kosi basin",
	Long: `floodmap thresholds Sentinel-1 VV backscatter with Otsu's method to map the water
before and after a flood event, and derives flood extents, progressions and
susceptibility datasets from them. Without a subcommand it opens the interactive menu.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		defer recoverPanic()
		printBanner()
		ui.ShowMenu()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd, thresholdCmd, progressionCmd, datasetCmd, evaluateCmd, predictCmd, regionsCmd)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			fmt.Printf("\033[33mNo .env file found, using the process environment\033[0m\n")
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
