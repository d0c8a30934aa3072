package downloader_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/adamwoolhether/binfetch/downloader"
	"github.com/adamwoolhether/binfetch/environ"
)

func ExampleDownloader_DownloadAsync() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.Path)
	}))
	defer ts.Close()

	dir, err := os.MkdirTemp("", "binfetch-async")
	if err != nil {
		fmt.Println("temp dir error:", err)
		return
	}
	defer os.RemoveAll(dir)

	d, err := downloader.Build(downloader.WithEnvironment(func() environ.Snapshot { return environ.Snapshot{} }))
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	ctx := context.Background()

	r, err := d.DownloadAsync(ctx, ts.URL+"/mongod", filepath.Join(dir, "mongod"), downloader.WithBatch(2))
	if err != nil {
		fmt.Println("async error:", err)
		return
	}
	r.Add(ctx, ts.URL+"/mongos", filepath.Join(dir, "mongos"))

	if err := r.Wait(); err != nil {
		fmt.Println("batch error:", err)
		return
	}

	for _, name := range []string{"mongod", "mongos"} {
		data, _ := os.ReadFile(filepath.Join(dir, name))
		fmt.Println(string(data))
	}
	// Output:
	// /mongod
	// /mongos
}

func ExampleDownloader_Verify() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "someMd5 mongodb.tgz")
	}))
	defer ts.Close()

	d, err := downloader.Build(
		downloader.WithEnvironment(func() environ.Snapshot { return environ.Snapshot{} }),
		downloader.WithCheckMD5(true),
		downloader.WithDigestFunc(func(string) (string, error) { return "anotherMd5", nil }),
	)
	if err != nil {
		fmt.Println("build error:", err)
		return
	}

	_, err = d.Verify(context.Background(), ts.URL+"/mongodb.tgz.md5", "mongodb.tgz")
	fmt.Println(err)
	// Output: checksum mismatch: expected someMd5, got anotherMd5
}
