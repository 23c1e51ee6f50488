// Package packet translates lighting operations into MiLight protocol frames
// and back.
//
// Each bulb family has a Codec. A codec is bound to one remote identity with
// Prepare and then produces exactly one finished Frame per operation. Every
// frame carries a sequence byte that increments per frame and wraps at 256.
// Parse decodes frames captured from physical remotes into an Operation.
//
// Only the RGB+CCT family (FUT092/FUT096 style remotes, V2 scrambled frames)
// has a codec. Radio parameters for the other families live in package radio.
//
// Codecs are not safe for concurrent use.
package packet
