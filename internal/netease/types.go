package netease

import "encoding/json"

// envelope carries the status fields every NetEase response shares
type envelope struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// ArtistSearchResult is the result block of a type=100 search
type ArtistSearchResult struct {
	ArtistCount int         `json:"artistCount"`
	HLWords     []string    `json:"hlWords"`
	Artists     []ArtistHit `json:"artists"`
}

// ArtistHit is one artist candidate returned by search
type ArtistHit struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	AlbumSize  int      `json:"albumSize"`
	MVSize     int      `json:"mvSize"`
	Trans      string   `json:"trans"`
	TransNames []string `json:"transNames"`
	Alias      []string `json:"alias"`
}

// TranslatedName returns the candidate's translated name, or "" when the
// API reports none.
func (a ArtistHit) TranslatedName() string {
	if a.Trans != "" {
		return a.Trans
	}
	if len(a.TransNames) > 0 {
		return a.TransNames[0]
	}
	return ""
}

type searchArtistsResponse struct {
	envelope
	Result ArtistSearchResult `json:"result"`
}

// ArtistProfile is the artist block of an artist lookup
type ArtistProfile struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	AlbumSize  int      `json:"albumSize"`
	MVSize     int      `json:"mvSize"`
	MusicSize  int      `json:"musicSize"`
	Trans      string   `json:"trans"`
	TransNames []string `json:"transNames"`
}

type artistResponse struct {
	envelope
	Artist ArtistProfile `json:"artist"`
}

// ArtistRef is an artist credited on a song
type ArtistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the album a song belongs to
type AlbumRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Song is a song as returned by the catalog and detail endpoints. Raw keeps
// the undecoded payload for archival.
type Song struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"ar"`
	Album       AlbumRef    `json:"al"`
	Alias       []string    `json:"alia"`
	Fee         int         `json:"fee"`
	Pop         float64     `json:"pop"`
	Mst         int         `json:"mst"`
	CopyrightID *int64      `json:"cp"`
	TrackNo     int         `json:"no"`

	Raw json.RawMessage `json:"-"`
}

// ArtistNames returns the credited artist names in credit order
func (s Song) ArtistNames() []string {
	names := make([]string, 0, len(s.Artists))
	for _, a := range s.Artists {
		names = append(names, a.Name)
	}
	return names
}

type catalogPageResponse struct {
	envelope
	Total int               `json:"total"`
	More  bool              `json:"more"`
	Songs []json.RawMessage `json:"songs"`
}

type songDetailResponse struct {
	envelope
	Songs []Song `json:"songs"`
}

// Album is the album block of an album lookup. PublishTime is milliseconds
// since the epoch and may be negative or absent.
type Album struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	PublishTime *int64 `json:"publishTime"`
	Size        int    `json:"size"`
}

type albumResponse struct {
	envelope
	Album Album `json:"album"`
}

type commentResponse struct {
	envelope
	Total int64 `json:"total"`
}

type followResponse struct {
	envelope
	Data struct {
		FansCnt int64 `json:"fansCnt"`
	} `json:"data"`
}

// LyricBlock is one lyric track of a lyric payload
type LyricBlock struct {
	Version int    `json:"version"`
	Lyric   string `json:"lyric"`
}

// TransUser describes who contributed a lyric translation
type TransUser struct {
	ID     int64 `json:"id"`
	Status int   `json:"status"`
	UserID int64 `json:"userid"`
	Uptime int64 `json:"uptime"`
}

// Lyrics is the lyric payload of a song
type Lyrics struct {
	envelope
	PureMusic   bool        `json:"pureMusic"`
	Lrc         *LyricBlock `json:"lrc"`
	TLyric      *LyricBlock `json:"tlyric"`
	TransUser   *TransUser  `json:"transUser"`
	Uncollected bool        `json:"uncollected"`
}

// SearchSong is a song returned by song and lyric searches
type SearchSong struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Artists     []ArtistRef `json:"artists"`
	Album       SearchAlbum `json:"album"`
	CopyrightID *int64      `json:"copyrightId"`
	Status      int         `json:"status"`
	Fee         int         `json:"fee"`
	Mark        int64       `json:"mark"`
	MVID        int64       `json:"mvid"`
	Alias       []string    `json:"alias"`
}

// SearchAlbum is the album block of a search hit
type SearchAlbum struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PublishTime int64  `json:"publishTime"`
	Size        int    `json:"size"`
}

type searchSongsResponse struct {
	envelope
	Result struct {
		SongCount int          `json:"songCount"`
		Songs     []SearchSong `json:"songs"`
	} `json:"result"`
}
