// Command dfs organizes scraped CSV downloads into a per-category layout and
// syncs each category's latest file to a remote spreadsheet tab.
package main
