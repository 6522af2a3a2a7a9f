// Package download fetches clip media into the work directory.
//
// Downloader walks the candidate clips in order and keeps the first one a
// Fetcher can retrieve. Partial files from failed candidates are removed
// before the next candidate is tried. Two fetchers are provided: YTDLP drives
// the yt-dlp binary, Direct streams the MP4 behind the clip thumbnail URL.
package download
