package model

// Platform is an external distribution target. The set is fixed and
// enumerable; callers iterate Platforms rather than probing map keys.
type Platform string

const (
	PlatformSpotify   Platform = "spotify"
	PlatformYouTube   Platform = "youtube"
	PlatformApple     Platform = "apple"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// Platforms lists every distribution target in display order.
var Platforms = []Platform{
	PlatformSpotify,
	PlatformYouTube,
	PlatformApple,
	PlatformInstagram,
	PlatformTikTok,
}

// ValidPlatform reports whether p names a known platform.
func ValidPlatform(p Platform) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// PlatformStatus is the upload state of an episode on one platform.
type PlatformStatus string

const (
	StatusDraft     PlatformStatus = "draft"
	StatusUploaded  PlatformStatus = "uploaded"
	StatusScheduled PlatformStatus = "scheduled"
)

// DistributionInfo is the per-platform upload record.
type DistributionInfo struct {
	Status PlatformStatus `bson:"status" json:"status"`
	URL    string         `bson:"url,omitempty" json:"url,omitempty"`
}

// Distribution holds one record per platform, keyed by Platform.
// NewDistribution pre-fills every platform so the set stays fixed.
type Distribution map[Platform]DistributionInfo

// NewDistribution returns a distribution with every platform in draft.
func NewDistribution() Distribution {
	d := make(Distribution, len(Platforms))
	for _, p := range Platforms {
		d[p] = DistributionInfo{Status: StatusDraft}
	}
	return d
}
