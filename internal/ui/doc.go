// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the web shell and its music library module:
//  1. [LoginView] : Username and password form backed by the session manager
//  2. [LibraryView] : The derived song list with sort, order and grouping controls
//  3. [FilterView] : Title, artist and album substring filters, applied as you type
//  4. [AddView] : New song form (admin only)
//  5. [ConfirmDeleteView] : Confirm removal of the selected song (admin only)
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// A stored session is restored on start so a previous login carries over between runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
