package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/chartx/internal/shared"
)

// newSpotifyTestServer serves a token endpoint and the given API handlers, rejecting unauthenticated API calls.
func newSpotifyTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *SpotifyService) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST to token endpoint, got %s", r.Method)
		}
		if id, _, ok := r.BasicAuth(); !ok || id != "test_client_id" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"bearer","expires_in":3600}`))
	})

	for pattern, handler := range routes {
		h := handler
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		})
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
		"token_url":     server.URL + "/token",
		"base_url":      server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return server, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.TokenURL != spotifyTokenURL {
				t.Errorf("expected default token URL, got %s", srv.config.TokenURL)
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		var _ TrackSource = (*SpotifyService)(nil)
	})

	t.Run("Token", func(t *testing.T) {
		_, srv := newSpotifyTestServer(t, nil)

		token, err := srv.Token(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "test-token" {
			t.Errorf("expected access token 'test-token', got %s", token.AccessToken)
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("returns top hit", func(t *testing.T) {
			var gotQuery string
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/search": func(w http.ResponseWriter, r *http.Request) {
					gotQuery = r.URL.Query().Get("q")
					if r.URL.Query().Get("type") != "track" || r.URL.Query().Get("limit") != "1" {
						t.Errorf("unexpected search params: %s", r.URL.RawQuery)
					}
					var resp SpotifySearchResponse
					resp.Tracks.Items = []SpotifyTrack{{
						ID:         "track-1",
						Name:       "Old Town Road",
						Artists:    []SpotifyArtist{{Name: "Lil Nas X"}, {Name: "Billy Ray Cyrus"}},
						Album:      SpotifyAlbum{Name: "7", ReleaseDate: "2019-06-21"},
						Popularity: 80,
					}}
					writeJSON(t, w, resp)
				},
			})

			match, err := srv.SearchTrack(context.Background(), "Old Town Road Lil Nas X")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotQuery != "Old Town Road Lil Nas X" {
				t.Errorf("expected query to be forwarded, got %q", gotQuery)
			}
			if match.ID != "track-1" || match.Album != "7" || match.ReleaseDate != "2019-06-21" {
				t.Errorf("unexpected match: %+v", match)
			}
			if len(match.Artists) != 2 {
				t.Errorf("expected 2 artists, got %d", len(match.Artists))
			}
		})

		t.Run("no results is a lookup miss", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/search": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(t, w, SpotifySearchResponse{})
				},
			})

			_, err := srv.SearchTrack(context.Background(), "nothing here")
			if !errors.Is(err, shared.ErrLookupMiss) {
				t.Errorf("expected ErrLookupMiss, got %v", err)
			}
		})

		t.Run("malformed payload is a lookup miss", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/search": func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(`{"tracks":`))
				},
			})

			_, err := srv.SearchTrack(context.Background(), "broken")
			if !errors.Is(err, shared.ErrLookupMiss) {
				t.Errorf("expected ErrLookupMiss, got %v", err)
			}
		})

		t.Run("empty query", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, nil)

			_, err := srv.SearchTrack(context.Background(), "   ")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("server error", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/search": func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				},
			})

			_, err := srv.SearchTrack(context.Background(), "anything")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("AudioFeatures", func(t *testing.T) {
		t.Run("decodes features", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/audio-features/track-1": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(t, w, SpotifyAudioFeatures{
						ID:            "track-1",
						Danceability:  0.88,
						Energy:        0.62,
						Key:           6,
						Mode:          1,
						Tempo:         136.04,
						TimeSignature: 4,
						DurationMS:    157067,
					})
				},
			})

			f, err := srv.AudioFeatures(context.Background(), "track-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if f.Danceability != 0.88 || f.Key != 6 || f.DurationMS != 157067 {
				t.Errorf("unexpected features: %+v", f)
			}
		})

		t.Run("not found is a lookup miss", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, map[string]http.HandlerFunc{
				"/v1/audio-features/": func(w http.ResponseWriter, r *http.Request) {
					http.NotFound(w, r)
				},
			})

			_, err := srv.AudioFeatures(context.Background(), "missing")
			if !errors.Is(err, shared.ErrLookupMiss) {
				t.Errorf("expected ErrLookupMiss, got %v", err)
			}
		})

		t.Run("rejected token", func(t *testing.T) {
			server, _ := newSpotifyTestServer(t, nil)

			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "wrong_client",
				"client_secret": "secret",
				"token_url":     server.URL + "/token",
				"base_url":      server.URL + "/v1",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			_, err = srv.AudioFeatures(context.Background(), "track-1")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})
}
