// Spotify API implementation of [TrackSource]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
}

// SpotifySearchResponse is the payload of GET /search?type=track.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyAudioFeatures is the payload of GET /audio-features/{id}.
type SpotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	DurationMS       int     `json:"duration_ms"`
}

// SpotifyService implements [TrackSource] for the Spotify Web API.
// Uses the [clientcredentials] grant; the returned client refreshes the app token as needed.
type SpotifyService struct {
	config     *clientcredentials.Config
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
//
// Recognised keys: client_id, client_secret (required), token_url, base_url.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &SpotifyService{
		config:     config,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: config.Client(context.Background()),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Token fetches (or reuses) the app access token. Useful to verify credentials up front.
func (s *SpotifyService) Token(ctx context.Context) (*oauth2.Token, error) {
	token, err := s.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s not found", shared.ErrLookupMiss, endpoint)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned 401", shared.ErrAuthFailed)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrLookupMiss, err)
	}
	return nil
}

// SearchTrack returns the top track hit for query.
func (s *SpotifyService) SearchTrack(ctx context.Context, query string) (*models.TrackMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", "1")

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, "/search?"+params.Encode(), &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", shared.ErrLookupMiss, query)
	}

	track := response.Tracks.Items[0]
	if track.ID == "" {
		return nil, fmt.Errorf("%w: result for %q has no id", shared.ErrLookupMiss, query)
	}

	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	return &models.TrackMatch{
		ID:          track.ID,
		Name:        track.Name,
		Artists:     artists,
		Album:       track.Album.Name,
		ReleaseDate: track.Album.ReleaseDate,
		Popularity:  track.Popularity,
	}, nil
}

// AudioFeatures retrieves the audio analysis attributes of trackID.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: empty track id", shared.ErrInvalidInput)
	}

	var f SpotifyAudioFeatures
	if err := s.doRequest(ctx, "/audio-features/"+url.PathEscape(trackID), &f); err != nil {
		return nil, err
	}
	if f.ID == "" {
		return nil, fmt.Errorf("%w: no audio features for %s", shared.ErrLookupMiss, trackID)
	}

	return &models.AudioFeatures{
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Key:              f.Key,
		Loudness:         f.Loudness,
		Mode:             f.Mode,
		Speechiness:      f.Speechiness,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Liveness:         f.Liveness,
		Valence:          f.Valence,
		Tempo:            f.Tempo,
		TimeSignature:    f.TimeSignature,
		DurationMS:       f.DurationMS,
	}, nil
}
