package app

import (
	"fmt"
	"runtime"

	"github.com/phillarmonic/figlet/figletlib"
)

// Domain: Version Display

// ShowVersion displays version information with ASCII art.
func ShowVersion(version, commit, date string) error {
	loader := figletlib.NewEmbededLoader()
	font, err := loader.GetFontByName("standard")
	if err != nil {
		return err
	}

	startColor, _ := figletlib.ParseColor("#90EE90")
	endColor, _ := figletlib.ParseColor("#87CEEB")
	gradientConfig := figletlib.ColorConfig{
		Mode:       figletlib.ColorModeGradient,
		StartColor: startColor,
		EndColor:   endColor,
	}

	fmt.Println()
	figletlib.PrintColoredMsg("iris", font, 80, font.Settings(), "left", gradientConfig)

	fmt.Println("build-configuration DSL and task runner")
	fmt.Println()
	fmt.Printf("Version %s\n", version)
	if commit != "unknown" {
		fmt.Printf("commit: %s\n", commit)
	}
	if date != "unknown" {
		fmt.Printf("built: %s\n", date)
	}
	fmt.Printf("go: %s\n", runtime.Version())
	fmt.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}
