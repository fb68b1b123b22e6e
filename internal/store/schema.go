package store

// Schema v1 - artists, work queue, catalog and lyrics
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Resolved artist profiles (canonical and duplicates)
CREATE TABLE IF NOT EXISTS artists (
  artist_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  aliases TEXT, -- JSON array
  album_count INTEGER DEFAULT 0,
  video_count INTEGER DEFAULT 0,
  followers INTEGER DEFAULT 0,
  search_term TEXT,
  profile_reference TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Work queue: artists whose catalog still needs enumerating
CREATE TABLE IF NOT EXISTS artist_queue (
  artist_id INTEGER PRIMARY KEY,
  finished INTEGER NOT NULL DEFAULT 0,
  queued_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_artist_queue_finished ON artist_queue(finished);

-- One row per song; first writer wins
CREATE TABLE IF NOT EXISTS catalog_songs (
  song_id INTEGER PRIMARY KEY,
  song_name TEXT NOT NULL,
  artist_id INTEGER NOT NULL,
  artist_name TEXT,
  album_id INTEGER DEFAULT 0,
  copyright_id INTEGER,
  popularity INTEGER DEFAULT 0,
  fee INTEGER DEFAULT 0,
  track_number INTEGER DEFAULT 0,
  lyrics_finished INTEGER NOT NULL DEFAULT 0,
  scraped_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_catalog_artist ON catalog_songs(artist_id);
CREATE INDEX IF NOT EXISTS idx_catalog_lyrics_finished ON catalog_songs(lyrics_finished);

-- Raw catalog payloads
CREATE TABLE IF NOT EXISTS song_json (
  artist_id INTEGER NOT NULL,
  song_id INTEGER NOT NULL,
  api_text TEXT,
  PRIMARY KEY (artist_id, song_id)
);

CREATE TABLE IF NOT EXISTS lyrics (
  song_id INTEGER PRIMARY KEY,
  variant_id TEXT NOT NULL,
  instrumental INTEGER NOT NULL DEFAULT 0,
  songwriters TEXT, -- JSON array
  lyrics TEXT,
  translated_lyrics TEXT,
  fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lyrics_instrumental ON lyrics(instrumental);
`

// Schema v2 - infringement sweep hits
const schemaV2 = `
CREATE TABLE IF NOT EXISTS search_hits (
  song_id INTEGER PRIMARY KEY,
  search_term TEXT NOT NULL,
  search_kind TEXT NOT NULL,
  song_name TEXT,
  artist_names TEXT,
  artist_ids TEXT,
  album_id INTEGER DEFAULT 0,
  album_name TEXT,
  publish_time INTEGER DEFAULT 0,
  copyright_id INTEGER,
  fee INTEGER DEFAULT 0,
  own INTEGER NOT NULL DEFAULT 0,
  found_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_search_hits_kind ON search_hits(search_kind);
CREATE INDEX IF NOT EXISTS idx_search_hits_own ON search_hits(own);
`
