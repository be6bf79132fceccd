package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	integrationTimeoutConstant        = 3 * time.Minute
	moduleRootRelativePathConstant    = ".."
	bareRepositoryDirectoryConstant   = "origin.git"
	clonedRepositoryDirectoryConstant = "clone"
	gitUserNameConstant               = "Integration Tester"
	gitUserEmailConstant              = "integration@example.com"
)

func runGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %s failed: %v\n%s", strings.Join(arguments, " "), runError, string(outputBytes))
	}
	return string(outputBytes)
}

// createRepositoryWithUpstream initializes a bare origin plus a working clone
// whose current branch tracks it, returning the clone path.
func createRepositoryWithUpstream(testInstance *testing.T, baseDirectory string) string {
	testInstance.Helper()

	bareRepositoryPath := filepath.Join(baseDirectory, bareRepositoryDirectoryConstant)
	runGitCommand(testInstance, baseDirectory, "init", "--bare", bareRepositoryPath)

	clonePath := filepath.Join(baseDirectory, clonedRepositoryDirectoryConstant)
	runGitCommand(testInstance, baseDirectory, "clone", bareRepositoryPath, clonePath)
	runGitCommand(testInstance, clonePath, "config", "user.name", gitUserNameConstant)
	runGitCommand(testInstance, clonePath, "config", "user.email", gitUserEmailConstant)

	seedFilePath := filepath.Join(clonePath, "seed.txt")
	writeIntegrationFile(testInstance, seedFilePath, "seed\n")
	runGitCommand(testInstance, clonePath, "add", "--all")
	runGitCommand(testInstance, clonePath, "commit", "-m", "seed")
	runGitCommand(testInstance, clonePath, "push", "--set-upstream", "origin", "HEAD")

	return clonePath
}

func writeIntegrationFile(testInstance *testing.T, filePath string, fileContent string) {
	testInstance.Helper()
	if writeError := os.WriteFile(filePath, []byte(fileContent), 0o600); writeError != nil {
		testInstance.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// runAutogit executes the CLI from source and returns combined output plus the process error.
func runAutogit(testInstance *testing.T, arguments ...string) (string, error) {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationTimeoutConstant)
	defer cancel()

	commandArguments := append([]string{"run", "."}, arguments...)
	command := exec.CommandContext(executionContext, "go", commandArguments...)
	command.Dir = moduleRootRelativePathConstant
	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}
