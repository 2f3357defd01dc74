package config

const (
	DefaultPath = "librarycard.yaml"

	DefaultPosterDirectory  = "posters"
	DefaultPosterHeight     = 210
	DefaultOutputDir        = "output"
	DefaultAnimation        = "grid"
	DefaultWidth            = 2880
	DefaultHeight           = 1620
	DefaultFPS              = 60
	DefaultDuration         = 6.0
	DefaultChunkSize        = 100
	DefaultFontSize         = 500
	DefaultEncoder          = "auto"
	DefaultThumbnailWidth   = 854
	DefaultThumbnailHeight  = 480
	DefaultHistoryPath      = "output/history.db"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	defaultLowResWidth      = 854
	defaultLowResHeight     = 480
	defaultCapitalizeOutput = true
)

// Default returns a complete configuration.
func Default() File {
	return File{
		PosterDirectory:   DefaultPosterDirectory,
		PosterHeight:      DefaultPosterHeight,
		OutputDir:         DefaultOutputDir,
		DefaultAnimation:  DefaultAnimation,
		LibraryAnimations: map[string]LibraryAnimation{},
		Text: Text{
			FontSize:   DefaultFontSize,
			Capitalize: defaultCapitalizeOutput,
		},
		Render: Frames{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			FPS:       DefaultFPS,
			Duration:  DefaultDuration,
			ChunkSize: DefaultChunkSize,
			Workers:   1,
		},
		Video: Video{
			Encoder:   DefaultEncoder,
			Thumbnail: Size{Width: DefaultThumbnailWidth, Height: DefaultThumbnailHeight},
			LowRes: LowRes{
				Enabled: true,
				Width:   defaultLowResWidth,
				Height:  defaultLowResHeight,
			},
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		History: History{
			Enabled: true,
			Path:    DefaultHistoryPath,
		},
	}
}
