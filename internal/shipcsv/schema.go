package shipcsv

// Column positions in ship_visuals_database.csv (current schema).
const (
	ColShipID = iota
	ColSpritePath
	ColSpriteExists
	ColSpriteWidth
	ColSpriteHeight
	ColScaleFactor
	// 6..12 are other visual attributes, passed through untouched.
	ColCoordinatePoints = 13
)

const (
	// NumColumns is the field count of every data row after processing.
	NumColumns = 14
	// LegacyColumns is the row width before scale_factor was added.
	LegacyColumns = 13

	// HeaderLabel marks the header row when found in its first field.
	HeaderLabel = "ship_ID"
	// CommentPrefix starts a comment line.
	CommentPrefix = "#"
	// EmptyPoints is the cleared coordinate_points value.
	EmptyPoints = "[]"
)
