package overseerr

import "time"

// Request status values as Overseerr reports them.
const (
	RequestPending  = 1
	RequestApproved = 2
	RequestDeclined = 3
)

// Media status values, tracked separately for the 4K copy.
const (
	MediaUnknown            = 1
	MediaPending            = 2
	MediaProcessing         = 3
	MediaPartiallyAvailable = 4
	MediaAvailable          = 5
)

// Permission bit flags.
const (
	PermAdmin            = 2
	PermRequest          = 8
	PermAutoApprove      = 16
	PermAutoApproveMovie = 32
	PermAutoApproveTV    = 64
	PermRequest4K        = 128
	PermRequest4KMovie   = 256
	PermRequest4KTV      = 512
	PermAutoApprove4K    = 1024
	PermAutoApprove4KMov = 2048
	PermAutoApprove4KTV  = 4096
	PermManageRequests   = 4096
)

// HasPermission reports whether perms grants the bit. Admin implies
// everything.
func HasPermission(perms, bit int64) bool {
	if perms&PermAdmin != 0 {
		return true
	}
	return perms&bit != 0
}

type Media struct {
	ID                  uint64  `json:"id"`
	TmdbID              uint64  `json:"tmdbId"`
	TvdbID              *uint64 `json:"tvdbId"`
	Status              int     `json:"status"`
	Status4K            int     `json:"status4k"`
	MediaType           string  `json:"mediaType"`
	ExternalServiceID   *uint64 `json:"externalServiceId"`
	ExternalServiceID4K *uint64 `json:"externalServiceId4k"`
}

type UserSettings struct {
	DiscordID string `json:"discordId"`
	Region    string `json:"region"`
	Locale    string `json:"locale"`
}

type User struct {
	ID          uint64        `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	Avatar      string        `json:"avatar"`
	Permissions int64         `json:"permissions"`
	UserType    int           `json:"userType"`
	Settings    *UserSettings `json:"settings"`
}

type RequestSeason struct {
	ID           uint64 `json:"id"`
	SeasonNumber int    `json:"seasonNumber"`
	Status       int    `json:"status"`
}

type Request struct {
	ID          uint64          `json:"id"`
	Status      int             `json:"status"`
	Type        string          `json:"type"`
	Is4K        bool            `json:"is4k"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Media       Media           `json:"media"`
	RequestedBy User            `json:"requestedBy"`
	ModifiedBy  *User           `json:"modifiedBy"`
	Seasons     []RequestSeason `json:"seasons"`
}

type Genre struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ExternalIDs struct {
	ImdbID string  `json:"imdbId"`
	TvdbID *uint64 `json:"tvdbId"`
}

type Movie struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Overview    string      `json:"overview"`
	PosterPath  string      `json:"posterPath"`
	ReleaseDate string      `json:"releaseDate"`
	Runtime     int         `json:"runtime"`
	VoteAverage float64     `json:"voteAverage"`
	Genres      []Genre     `json:"genres"`
	MediaInfo   *Media      `json:"mediaInfo"`
	ExternalIDs ExternalIDs `json:"externalIds"`
}

type Season struct {
	ID           uint64 `json:"id"`
	SeasonNumber int    `json:"seasonNumber"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episodeCount"`
	AirDate      string `json:"airDate"`
}

type Tv struct {
	ID               uint64      `json:"id"`
	Name             string      `json:"name"`
	Overview         string      `json:"overview"`
	PosterPath       string      `json:"posterPath"`
	FirstAirDate     string      `json:"firstAirDate"`
	NumberOfSeasons  int         `json:"numberOfSeasons"`
	NumberOfEpisodes int         `json:"numberOfEpisodes"`
	VoteAverage      float64     `json:"voteAverage"`
	Genres           []Genre     `json:"genres"`
	Seasons          []Season    `json:"seasons"`
	MediaInfo        *Media      `json:"mediaInfo"`
	ExternalIDs      ExternalIDs `json:"externalIds"`
}

type SearchResult struct {
	ID           uint64  `json:"id"`
	MediaType    string  `json:"mediaType"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"posterPath"`
	ReleaseDate  string  `json:"releaseDate"`
	FirstAirDate string  `json:"firstAirDate"`
	VoteAverage  float64 `json:"voteAverage"`
	MediaInfo    *Media  `json:"mediaInfo"`
}

// DisplayTitle returns whichever of title/name the result carries.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
}

type RequestsResponse struct {
	PageInfo PageInfo  `json:"pageInfo"`
	Results  []Request `json:"results"`
}

type UsersResponse struct {
	PageInfo PageInfo `json:"pageInfo"`
	Results  []User   `json:"results"`
}

type CreateRequestBody struct {
	MediaType string `json:"mediaType"`
	MediaID   uint64 `json:"mediaId"`
	Is4K      bool   `json:"is4k,omitempty"`
	Seasons   []int  `json:"seasons,omitempty"`
}

type NotificationSettings struct {
	DiscordID string `json:"discordId"`
}
