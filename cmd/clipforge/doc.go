// Command clipforge turns a Twitch clip into a captioned vertical short.
//
// Subcommands:
//
//	run [channel]      pick a clip, select regions, composite and caption it
//	clips <channel>    list the candidate clips
//	history            show recent runs
//	doctor             check binaries, directories, and credentials
//	config init|show   write the sample config or print the resolved one
package main
