// Package ytdlp wraps yt-dlp CLI interactions: building argument lists,
// launching downloads in their own process group, scraping progress from
// output lines, and probing media titles.
package ytdlp
