package config

const (
	// MaxWorkspaceNameLength is the maximum length for workspace names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxWorkspaceNameLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same limit as workspace names for consistency.
	MaxFolderNameLength = 255

	// MaxChatTitleLength is the maximum length for chat titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxChatTitleLength = 255

	// MaxPersistedExpandedFolderIDs caps how many expanded-folder ids the
	// tree UI state persists per workspace. Oldest entries are dropped
	// first when the cap is exceeded.
	MaxPersistedExpandedFolderIDs = 2000
)
