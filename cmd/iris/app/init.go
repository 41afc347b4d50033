package app

import (
	"fmt"
	"os"
)

// Domain: Project Scaffolding

// InitializeProject creates a starter iris.build file at filename (or
// the default "iris.build" if empty).
func InitializeProject(filename string) error {
	targetFile := "iris.build"
	if filename != "" {
		targetFile = filename
	}

	if _, err := os.Stat(targetFile); err == nil {
		return fmt.Errorf("project file %q already exists", targetFile)
	}

	if err := os.WriteFile(targetFile, []byte(starterProject), 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	fmt.Printf("Created %s\n", targetFile)
	fmt.Println("Get started with: iris --list")
	return nil
}

const starterProject = `project "my-app" do
  version = "0.1.0"
  lang = "c++"
  std = "c++20"
end

compiler do
  flags = ["-Wall", "-Wextra"]
  if buildtype == "release" do
    flags += ["-O2"]
  else
    flags += ["-g"]
  end
end

library "core" do
  sources = glob("lib/**/*.cpp")
  includes = ["lib/include"]
end

executable "app" do
  sources = glob("src/**/*.cpp")
  deps = ["core"]
end

task :build do
  print("building in", buildtype, "mode")
end
`
