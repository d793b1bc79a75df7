package logtab

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	nt "logtab/entity"
)

// Watch reads the requested table once and again whenever its source file
// is written or re-created, until ctx is done.
//
// The source's directory is watched so that replacement by rename is seen.
// Events for other files, such as filter output, are ignored.
func (pl *Pipeline) Watch(ctx context.Context, req Request, fn func(tbl nt.Table, err error)) (err error) {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = errors.Wrapf(err, "failed to create watcher")
		return
	}
	defer watcher.Close()

	source, err := filepath.Abs(req.Path)
	if err != nil {
		err = errors.Wrapf(err, "failed to resolve %s", req.Path)
		return
	}

	err = watcher.Add(filepath.Dir(source))
	if err != nil {
		err = errors.Wrapf(err, "failed to watch %s", filepath.Dir(source))
		return
	}

	fn(pl.Table(ctx, req))

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event, source) {
				continue
			}
			pl.logger.Info(ctx, "source changed", "path", event.Name, "op", event.Op.String())
			fn(pl.Table(ctx, req))

		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			pl.logger.Error(ctx, "watch error", werr, "path", source)
		}
	}
}

func relevant(event fsnotify.Event, source string) bool {

	name, err := filepath.Abs(event.Name)
	if err != nil || name != source {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
