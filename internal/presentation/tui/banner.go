package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when an interactive
// interview starts.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("               _      _             ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("   __ _ _   _ (_) ___| | _____  ___ ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String("  / _` | | | || |/ __| |/ / __|/ __|").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" | (_| | |_| || | (__|   <\\__ \\ (__ ").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String("  \\__, |\\__,_||_|\\___|_|\\_\\___/\\___|").Foreground(p.Color("#60a5fa"))
	s6 := termenv.String("     |_|  quickscope interview engine").Foreground(p.Color("#818cf8"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
