// Package jsonfile stores embedding results as a single JSON lookup file.
//
// The file holds an array of objects with "name" and "embedding" keys in
// the order the models were extracted. Writes overwrite the previous file
// atomically via a same-directory temporary file and rename.
package jsonfile
