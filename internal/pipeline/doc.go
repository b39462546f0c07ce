// Package pipeline connects the input source to the decoding sink.
//
// The Source reads messages (raw reads or capture records) and hands them to
// the Sink through a bounded queue. Sends block while the queue is full. The
// Source always finishes with one empty Message, which the Sink treats as the
// end of the stream. When the Sink goes away early the queue's done channel
// is closed and the Source stops sending.
//
// The Sink slices each message into windows, decodes the schema against
// every window strictly in field order, and redraws the terminal in place
// between windows.
package pipeline
