// champ-collect walks a ChampSim results tree, extracts simulator metrics
// from new or modified log files, and maintains an aggregated spreadsheet
// report incrementally.
package main

func main() {
	Execute()
}
