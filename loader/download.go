package loader

import (
	"context"
	"log"
	"math/rand"
	"os"
	"path"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/ml/data/downloader"
	"github.com/pkg/errors"

	"github.com/gabehenriques/lets-build-gpt/internal/files"
	"github.com/gabehenriques/lets-build-gpt/internal/xsync"
)

// Download and caching of corpus files.

// getDownloadManager returns the current downloader.Manager, or creates a new one for this
// Source.
func (s *Source) getDownloadManager() *downloader.Manager {
	if s.downloadManager == nil {
		s.downloadManager = downloader.New().MaxParallel(s.MaxParallelDownload).WithAuthToken(s.authToken)
	}
	return s.downloadManager
}

// Download fetches the corpus file if it is not yet cached, and returns the path of the
// cached copy.
//
// The returned file should be used for reading only, since it may be shared with other
// processes using the same cache directory.
func (s *Source) Download(ctx context.Context) (string, error) {
	return s.download(ctx, false)
}

// Refresh downloads the corpus file again, even if a cached copy exists. Use it when the
// upstream file is known to have changed.
func (s *Source) Refresh(ctx context.Context) (string, error) {
	return s.download(ctx, true)
}

func (s *Source) download(ctx context.Context, forceDownload bool) (string, error) {
	filePath, err := s.corpusPath()
	if err != nil {
		return "", err
	}
	cached := files.Exists(filePath) && !forceDownload
	if err = s.lockedDownload(ctx, s.url, filePath, forceDownload, nil); err != nil {
		return "", errors.WithMessagef(err, "while downloading dataset %q", s.Name)
	}
	if s.Verbosity >= 1 {
		if info, statErr := os.Stat(filePath); statErr == nil {
			if cached {
				if s.Verbosity >= 2 {
					log.Printf("Dataset %q: reusing cached %s (%s)", s.Name, filePath, humanize.Bytes(uint64(info.Size())))
				}
			} else {
				log.Printf("Dataset %q: downloaded %s (%s)", s.Name, filePath, humanize.Bytes(uint64(info.Size())))
			}
		}
	}
	return filePath, nil
}

// Text returns the contents of the corpus as text, downloading the file first if it is not
// cached yet.
func (s *Source) Text(ctx context.Context) (string, error) {
	filePath, err := s.Download(ctx)
	if err != nil {
		return "", err
	}
	return files.ReadText(filePath)
}

// Prefetch warms the cache for several sources, downloading at most maxParallel of them at
// the same time (maxParallel <= 0 means no limit). It waits for all downloads to finish and
// returns the first error found, if any.
func Prefetch(ctx context.Context, maxParallel int, sources ...*Source) error {
	semaphore := xsync.NewSemaphore(maxParallel)
	downloadErrors := make([]error, len(sources))
	var wg sync.WaitGroup
	wg.Add(len(sources))
	for i, source := range sources {
		go func(i int, source *Source) {
			defer wg.Done()
			semaphore.Acquire()
			defer semaphore.Release()
			_, downloadErrors[i] = source.Download(ctx)
		}(i, source)
	}
	wg.Wait()
	for _, err := range downloadErrors {
		if err != nil {
			return err
		}
	}
	return nil
}

// lockedDownload url to the given filePath.
//
// If filePath exists and forceDownload is false, it is assumed to already have been
// correctly downloaded, and it returns immediately.
//
// It downloads the file to filePath+".downloading" and then atomically moves it to
// filePath.
//
// It uses a temporary filePath+".lock" to coordinate multiple processes or programs trying
// to download the same file at the same time.
func (s *Source) lockedDownload(ctx context.Context, url, filePath string, forceDownload bool, progressCallback downloader.ProgressCallback) error {
	if files.Exists(filePath) {
		if !forceDownload {
			return nil
		}
		err := os.Remove(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to remove %q while force-downloading %q", filePath, url)
		}
	}

	// Checks whether context has already been cancelled, and exit immediately.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Create directory for file.
	if err := os.MkdirAll(path.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory for file %q", filePath)
	}

	// Lock file to avoid parallel downloads.
	lockPath := filePath + ".lock"
	var mainErr error
	errLock := execOnFileLock(ctx, lockPath, func() {
		if files.Exists(filePath) && !forceDownload {
			// Some concurrent other process (or goroutine) already downloaded the file.
			return
		}

		// Create tmpFile where to download.
		var tmpFileClosed bool
		tmpPath := filePath + ".downloading"
		tmpFile, err := os.Create(tmpPath)
		if err != nil {
			mainErr = errors.Wrapf(err, "creating temporary file for download in %q", tmpPath)
			return
		}
		defer func() {
			// If we exit with an error, make sure to close and remove unfinished temporary file.
			if !tmpFileClosed {
				err := tmpFile.Close()
				if err != nil {
					log.Printf("Failed closing temporary file %q: %v", tmpPath, err)
				}
				err = os.Remove(tmpPath)
				if err != nil {
					log.Printf("Failed removing temporary file %q: %v", tmpPath, err)
				}
			}
		}()

		if s.Verbosity >= 2 {
			log.Printf("Downloading dataset %q from %q (%s)", s.Name, url, UserAgent())
		}
		downloadManager := s.getDownloadManager()
		mainErr = downloadManager.Download(ctx, url, tmpPath, progressCallback)
		if mainErr != nil {
			mainErr = errors.WithMessagef(mainErr, "while downloading %q to %q", url, tmpPath)
			return
		}

		// Download succeeded, move to our target location.
		tmpFileClosed = true
		if err := tmpFile.Close(); err != nil {
			mainErr = errors.Wrapf(err, "failed to close temporary download file %q", tmpPath)
			return
		}
		if err := os.Rename(tmpPath, filePath); err != nil {
			mainErr = errors.Wrapf(err, "failed to move downloaded file %q to %q", tmpPath, filePath)
			return
		}

		// File now exists, so we no longer need the lock file.
		err = os.Remove(lockPath)
		if err != nil {
			log.Printf("Warning: error removing lock file %q: %+v", lockPath, err)
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to download %q", lockPath, url)
	}
	return nil
}

// execOnFileLock opens the lockPath file (or creates it if it doesn't yet exist), locks it,
// and executes the function. If the lockPath is already locked, it polls with a 1 to 2
// seconds period (randomly) until it acquires the lock or ctx is cancelled.
//
// The lockPath is not removed. It's safe to remove it from the given fn, if one knows that
// no new calls to execOnFileLock with the same lockPath are going to be made.
func execOnFileLock(ctx context.Context, lockPath string, fn func()) (err error) {
	var f *os.File
	f, err = os.OpenFile(lockPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, DefaultFileCreationPerm)
	if err != nil {
		err = errors.Wrapf(err, "while locking %q", lockPath)
		return
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			log.Printf("failed to close lock file %q", lockPath)
		}
	}()

	// Acquire the lock, or give up when the context is cancelled.
	for {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, syscall.EAGAIN) {
			err = errors.Wrapf(err, "while locking %q", lockPath)
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}

		// Wait from 1 to 2 seconds.
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}

	// Unlock in a deferred function, so it happens even if `fn()` panics. Closing the file
	// would also release the lock, this just makes it explicit.
	defer func() {
		unlockErr := syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		if unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
		}
	}()

	// We got the lock, run the function.
	fn()

	return
}
