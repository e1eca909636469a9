package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
	"github.com/vidgrab/vidgrab/types"
	"go.uber.org/zap"
)

// maxEngineOutput caps how much engine stderr is kept on an error
const maxEngineOutput = 8192

// ytdlpInfo is the subset of the yt-dlp info JSON the service reads
type ytdlpInfo struct {
	Title             string   `json:"title"`
	Thumbnail         *string  `json:"thumbnail"`
	Duration          *float64 `json:"duration"`
	Uploader          *string  `json:"uploader"`
	Channel           *string  `json:"channel"`
	ViewCount         *int64   `json:"view_count"`
	Description       *string  `json:"description"`
	WebpageURL        *string  `json:"webpage_url"`
	Extractor         *string  `json:"extractor"`
	Formats           []any    `json:"formats"`
	Filename          string   `json:"filename"`
	LegacyFilename    string   `json:"_filename"`
	RequestedDownload []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// YTDLPFetcher implements Fetcher by running the yt-dlp executable
type YTDLPFetcher struct {
	logger     *zap.Logger
	executable string
}

var _ Fetcher = (*YTDLPFetcher)(nil)

// NewYTDLPFetcher creates a fetcher; an empty executable lets go-ytdlp resolve it
func NewYTDLPFetcher(logger *zap.Logger, executable string) *YTDLPFetcher {
	return &YTDLPFetcher{
		logger:     logger,
		executable: executable,
	}
}

// InstallYTDLP makes sure a yt-dlp binary is available, downloading one if needed
func InstallYTDLP(ctx context.Context, logger *zap.Logger) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	logger.Info("yt-dlp available",
		zap.String("executable", resolved.Executable),
		zap.String("version", resolved.Version))
	return nil
}

func (f *YTDLPFetcher) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoWarnings().
		NoPlaylist().
		NoProgress()
	if f.executable != "" {
		cmd = cmd.SetExecutable(f.executable)
	}
	return cmd
}

// Probe runs a metadata-only extraction
func (f *YTDLPFetcher) Probe(ctx context.Context, url string) (*types.Metadata, error) {
	cmd := f.command().
		Format("best").
		SkipDownload().
		DumpSingleJSON()

	f.logger.Debug("probing media", zap.String("url", url))

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, engineError("probe", result, err)
	}

	info, err := parseYTDLPInfo(result.Stdout)
	if err != nil {
		return nil, err
	}

	metadata := info.metadata()
	return &metadata, nil
}

// Fetch downloads the media into outputTemplate
func (f *YTDLPFetcher) Fetch(ctx context.Context, url string, quality Quality, outputTemplate string) (*FetchResult, error) {
	selector := quality.FormatSelector()
	cmd := f.command().
		Format(selector).
		Output(outputTemplate).
		MergeOutputFormat("mp4").
		PrintJSON()

	f.logger.Debug("fetching media",
		zap.String("url", url),
		zap.String("quality", quality.String()),
		zap.String("format", selector))

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, engineError("fetch", result, err)
	}

	info, err := parseYTDLPInfo(result.Stdout)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Metadata: info.metadata(),
		PathHint: info.producedPath(),
	}, nil
}

// engineError builds a FetchError from the engine's stderr, falling back to the run error
func engineError(op string, result *ytdlp.Result, err error) *FetchError {
	var output string
	if result != nil {
		output = strings.TrimSpace(result.Stderr)
		if len(output) > maxEngineOutput {
			output = output[len(output)-maxEngineOutput:]
		}
	}
	return &FetchError{Op: op, Output: output, Err: err}
}

// parseYTDLPInfo decodes the last JSON document in the engine output
func parseYTDLPInfo(stdout string) (*ytdlpInfo, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var info ytdlpInfo
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return nil, fmt.Errorf("failed to decode engine output: %w", err)
		}
		return &info, nil
	}
	return nil, fmt.Errorf("engine returned no metadata")
}

func (i *ytdlpInfo) metadata() types.Metadata {
	uploader := i.Uploader
	if uploader == nil {
		uploader = i.Channel
	}

	var description *string
	if i.Description != nil && *i.Description != "" {
		d := *i.Description
		description = &d
	}

	m := types.Metadata{
		Title:            i.Title,
		Thumbnail:        i.Thumbnail,
		Duration:         i.Duration,
		Uploader:         uploader,
		ViewCount:        i.ViewCount,
		Description:      description,
		WebpageURL:       i.WebpageURL,
		Extractor:        i.Extractor,
		FormatsAvailable: len(i.Formats) > 0,
	}
	m.TruncateDescription()
	return m
}

// producedPath returns the engine's final file name, preferring the post-merge path
func (i *ytdlpInfo) producedPath() string {
	for _, rd := range i.RequestedDownload {
		if rd.Filepath != "" {
			return rd.Filepath
		}
	}
	if i.Filename != "" {
		return i.Filename
	}
	return i.LegacyFilename
}
