package ui

import (
	"fmt"
	"log"

	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// Options configures the window around a board.
type Options struct {
	Title     string
	ShareLink string
	// Animate replays the board; nil hides the playback buttons.
	Animate func()
	// Editable enables opening and saving snapshot files.
	Editable bool
}

// RunApp shows the board in a window and blocks until it is closed.
func RunApp(board *BoardWidget, opts Options) {
	myApp := app.New()
	myWindow := myApp.NewWindow(opts.Title)
	w, h := board.Canvas.Size()
	myWindow.Resize(fyne.NewSize(float32(w), float32(h)+80))

	status := widget.NewLabel("Ready")
	board.OnStatus = status.SetText

	actions := Actions{Animate: opts.Animate}
	if opts.Editable {
		actions.Save = func() { saveDialog(myWindow, board) }
		actions.Open = func() { openDialog(myWindow, board) }
	}
	toolbar := NewToolbar(board, actions)

	bottom := []fyne.CanvasObject{status}
	if opts.ShareLink != "" {
		link := widget.NewEntry()
		link.SetText(opts.ShareLink)
		bottom = append(bottom, container.NewBorder(nil, nil, widget.NewLabel("Share:"), nil, link))
	}
	content := container.NewBorder(toolbar, container.NewVBox(bottom...), nil, nil, board)

	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}

func saveDialog(win fyne.Window, board *BoardWidget) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		snap := board.Canvas.Serialize()
		if err := state.Encode(writer, snap); err != nil {
			log.Printf("Save: %v", err)
			board.SetStatus("Error saving file")
			return
		}
		board.SetStatus(fmt.Sprintf("Saved %d strokes", len(snap.Strokes)))
	}, win)
	d.SetFileName("board.json")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func openDialog(win fyne.Window, board *BoardWidget) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		snap, err := state.Decode(reader)
		if err != nil {
			log.Printf("Open: %v", err)
			board.SetStatus("Error parsing file - invalid format")
			return
		}
		board.Canvas.CancelAnimation()
		board.Canvas.Load(snap)
		board.SetStatus(fmt.Sprintf("Loaded %d strokes", len(snap.Strokes)))
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}
