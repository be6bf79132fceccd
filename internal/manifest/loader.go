package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/temirov/autogit/internal/fsaccess"
	pathutils "github.com/temirov/autogit/internal/utils/path"
)

const (
	manifestMissingMessageConstant             = "manifest file not found"
	manifestMalformedTemplateConstant          = "manifest is malformed: %s"
	manifestReadErrorTemplateConstant          = "failed to read manifest %s: %w"
	manifestTopLevelObjectReasonConstant       = "top-level value must be a JSON object"
	manifestStringValuesReasonTemplateConstant = "value for repository %q must be a string path"
	manifestInvalidJSONReasonTemplateConstant  = "invalid JSON: %s"
)

// ErrManifestMissing indicates the manifest path does not name an existing file.
var ErrManifestMissing = errors.New(manifestMissingMessageConstant)

// MalformedManifestError describes a manifest whose content violates the expected shape.
type MalformedManifestError struct {
	Reason string
}

// Error describes the malformed manifest.
func (manifestError MalformedManifestError) Error() string {
	return fmt.Sprintf(manifestMalformedTemplateConstant, manifestError.Reason)
}

// RepositoryEntry pairs a human-readable repository name with its filesystem path.
type RepositoryEntry struct {
	Name string
	Path string
}

// Loader reads repository manifests from disk and expands user home shortcuts in paths.
type Loader struct {
	fileSystem   fsaccess.FileSystem
	homeExpander *pathutils.HomeExpander
}

// NewLoader constructs a manifest loader using the provided filesystem.
func NewLoader(fileSystem fsaccess.FileSystem, homeExpander *pathutils.HomeExpander) *Loader {
	if fileSystem == nil {
		fileSystem = fsaccess.NewOSFileSystem()
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &Loader{fileSystem: fileSystem, homeExpander: homeExpander}
}

// Load parses the manifest at manifestPath and returns its entries in document order.
// Duplicate repository names keep their first position while the last path wins.
// An empty JSON object yields an empty slice.
func (loader *Loader) Load(manifestPath string) ([]RepositoryEntry, error) {
	expandedManifestPath := loader.homeExpander.Expand(strings.TrimSpace(manifestPath))

	manifestContent, readError := loader.fileSystem.ReadFile(expandedManifestPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, ErrManifestMissing
		}
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, expandedManifestPath, readError)
	}

	entries, parseError := loader.parseEntries(manifestContent)
	if parseError != nil {
		return nil, parseError
	}

	for entryIndex := range entries {
		entries[entryIndex].Path = loader.homeExpander.Expand(entries[entryIndex].Path)
	}

	return entries, nil
}

// parseEntries walks the JSON token stream so entries keep the document order
// that map-based decoding would discard.
func (loader *Loader) parseEntries(manifestContent []byte) ([]RepositoryEntry, error) {
	decoder := json.NewDecoder(bytes.NewReader(manifestContent))

	openingToken, openingError := decoder.Token()
	if openingError != nil {
		return nil, MalformedManifestError{Reason: fmt.Sprintf(manifestInvalidJSONReasonTemplateConstant, openingError)}
	}
	openingDelimiter, isDelimiter := openingToken.(json.Delim)
	if !isDelimiter || openingDelimiter != '{' {
		return nil, MalformedManifestError{Reason: manifestTopLevelObjectReasonConstant}
	}

	entries := []RepositoryEntry{}
	entryPositions := map[string]int{}

	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return nil, MalformedManifestError{Reason: fmt.Sprintf(manifestInvalidJSONReasonTemplateConstant, keyError)}
		}
		repositoryName := keyToken.(string)

		valueToken, valueError := decoder.Token()
		if valueError != nil {
			return nil, MalformedManifestError{Reason: fmt.Sprintf(manifestInvalidJSONReasonTemplateConstant, valueError)}
		}
		repositoryPath, valueIsString := valueToken.(string)
		if !valueIsString {
			return nil, MalformedManifestError{Reason: fmt.Sprintf(manifestStringValuesReasonTemplateConstant, repositoryName)}
		}

		if existingPosition, alreadySeen := entryPositions[repositoryName]; alreadySeen {
			entries[existingPosition].Path = repositoryPath
			continue
		}

		entryPositions[repositoryName] = len(entries)
		entries = append(entries, RepositoryEntry{Name: repositoryName, Path: repositoryPath})
	}

	closingToken, closingError := decoder.Token()
	if closingError != nil {
		return nil, MalformedManifestError{Reason: fmt.Sprintf(manifestInvalidJSONReasonTemplateConstant, closingError)}
	}
	if closingDelimiter, isClosingDelimiter := closingToken.(json.Delim); !isClosingDelimiter || closingDelimiter != '}' {
		return nil, MalformedManifestError{Reason: manifestTopLevelObjectReasonConstant}
	}

	if trailingError := ensureNoTrailingContent(decoder); trailingError != nil {
		return nil, trailingError
	}

	return entries, nil
}

func ensureNoTrailingContent(decoder *json.Decoder) error {
	_, trailingError := decoder.Token()
	if trailingError == nil {
		return MalformedManifestError{Reason: manifestTopLevelObjectReasonConstant}
	}
	if errors.Is(trailingError, io.EOF) {
		return nil
	}
	return MalformedManifestError{Reason: fmt.Sprintf(manifestInvalidJSONReasonTemplateConstant, trailingError)}
}
