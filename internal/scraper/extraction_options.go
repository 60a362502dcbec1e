package scraper

// DistillOptions controls what the content distiller keeps from the page
type DistillOptions struct {
	IncludeLinks  bool `json:"includeLinks"`
	IncludeImages bool `json:"includeImages"`
	IncludeTables bool `json:"includeTables"`
	// FavorRecall falls back to the page's main container when the
	// reader-mode article comes out thin.
	FavorRecall bool `json:"favorRecall"`
}

// DefaultDistillOptions keeps prose only
func DefaultDistillOptions() DistillOptions {
	return DistillOptions{}
}

// RecallDistillOptions keeps links, images and tables and prefers too much content over too little
func RecallDistillOptions() DistillOptions {
	return DistillOptions{
		IncludeLinks:  true,
		IncludeImages: true,
		IncludeTables: true,
		FavorRecall:   true,
	}
}
