package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/netease-audit/internal/classify"
	"github.com/franz/netease-audit/internal/resolve"
	"github.com/franz/netease-audit/internal/util"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored artists and songs",
	Long: `Print what the database holds for one artist or one song.

  nca show artist <id>   profile, aliases, followers and crawl state
  nca show song <id>     catalog row and classified lyrics`,
}

var showArtistCmd = &cobra.Command{
	Use:   "artist <id>",
	Short: "Show a stored artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowArtist,
}

var showSongCmd = &cobra.Command{
	Use:   "song <id>",
	Short: "Show a stored song",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowSong,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showArtistCmd)
	showCmd.AddCommand(showSongCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		// allow pasting a profile link
		return resolve.ParseProfileID(arg)
	}
	return id, nil
}

func runShowArtist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	artist, err := db.GetArtist(ctx, id)
	if errors.Is(err, util.ErrNotFound) {
		util.WarnLog("Artist %d is not stored. Run 'nca resolve' first.", id)
		return nil
	}
	if err != nil {
		return err
	}

	catalog, err := db.ArtistCatalog(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Artist:    %s (%d)\n", artist.Name, artist.ID)
	fmt.Printf("Link:      %s\n", resolve.ProfileLink(artist.ID))
	if len(artist.Aliases) > 0 {
		fmt.Printf("Aliases:   %s\n", strings.Join(artist.Aliases, ", "))
	}
	if romanized := resolve.Romanize(artist.Name); romanized != artist.Name {
		fmt.Printf("Romanized: %s\n", romanized)
	}
	fmt.Printf("Albums:    %d\n", artist.AlbumCount)
	fmt.Printf("Videos:    %d\n", artist.VideoCount)
	fmt.Printf("Followers: %d\n", artist.Followers)
	fmt.Printf("Songs:     %d stored\n", len(catalog))

	return nil
}

func runShowSong(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid song id %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	song, err := db.GetCatalogEntry(ctx, id)
	if errors.Is(err, util.ErrNotFound) {
		util.WarnLog("Song %d is not stored", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Song:      %s (%d)\n", song.SongName, song.SongID)
	fmt.Printf("Link:      %s\n", classify.SongLink(song.SongID))
	fmt.Printf("Artist:    %s (%d)\n", song.ArtistName, song.ArtistID)
	fmt.Printf("Album:     %d\n", song.AlbumID)
	if song.CopyrightID != nil {
		fmt.Printf("Copyright: %d\n", *song.CopyrightID)
	}
	fmt.Printf("Fee:       %d\n", song.Fee)
	fmt.Printf("Track:     %d\n", song.TrackNumber)

	lyrics, err := db.GetLyrics(ctx, id)
	switch {
	case errors.Is(err, util.ErrNotFound):
		fmt.Println("Lyrics:    not fetched yet")
	case err != nil:
		return err
	default:
		fmt.Printf("Lyrics:    variant %s", lyrics.VariantID)
		if lyrics.Instrumental {
			fmt.Print(" (instrumental)")
		}
		if lyrics.TranslatedLyrics != nil {
			fmt.Print(" (translated)")
		}
		fmt.Println()
		if len(lyrics.Songwriters) > 0 {
			fmt.Printf("Writers:   %s\n", strings.Join(lyrics.Songwriters, ", "))
		}
	}

	return nil
}
