package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultFalse", arguments: []string{}, expectedValue: false, expectedChanged: false},
		{name: "ImplicitTrue", arguments: []string{"--toggle"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitYes", arguments: []string{"--toggle", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitTrueUppercase", arguments: []string{"--toggle", "TRUE"}, expectedValue: true, expectedChanged: true},
		{name: "ExplicitNo", arguments: []string{"--toggle", "no"}, expectedValue: false, expectedChanged: true},
		{name: "ExplicitFalseUppercase", arguments: []string{"--toggle", "FALSE"}, expectedValue: false, expectedChanged: true},
		{name: "EqualsOff", arguments: []string{"--toggle=off"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var toggleValue bool
			AddToggleFlag(command.Flags(), &toggleValue, "toggle", false, "Toggle flag")

			normalizedArguments := NormalizeToggleArguments(testCase.arguments)
			parseError := command.ParseFlags(normalizedArguments)
			require.NoError(t, parseError)

			require.Equal(t, testCase.expectedValue, toggleValue)

			flag := command.Flags().Lookup("toggle")
			require.NotNil(t, flag)
			require.Equal(t, testCase.expectedChanged, flag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsInvalidValues(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "toggle", false, "Toggle flag")

	normalizedArguments := NormalizeToggleArguments([]string{"--toggle", "maybe"})
	parseError := command.ParseFlags(normalizedArguments)
	require.Error(t, parseError)

	require.Equal(t, false, toggleValue)

	flag := command.Flags().Lookup("toggle")
	require.NotNil(t, flag)
	require.False(t, flag.Changed)
}

func TestNormalizeToggleArgumentsLeavesOtherFlagsUntouched(t *testing.T) {
	command := &cobra.Command{}

	var toggleValue bool
	AddToggleFlag(command.Flags(), &toggleValue, "toggle", false, "Toggle flag")
	command.Flags().String("manifest", "", "Manifest path")

	normalizedArguments := NormalizeToggleArguments([]string{"--manifest", "repositories.json", "--toggle", "no"})
	require.Equal(t, []string{"--manifest", "repositories.json", "--toggle=no"}, normalizedArguments)

	parseError := command.ParseFlags(normalizedArguments)
	require.NoError(t, parseError)
	require.False(t, toggleValue)
}
