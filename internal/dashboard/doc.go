// Package dashboard drives the session, room and booking services for an
// interactive front end. Every operation runs asynchronously and reports its
// progress through per-slice state: a loading status and a human readable
// error message.
package dashboard
