// Package model defines the data structures shared by the pricewatch packages.
//
//   - Product: one catalog entry to monitor
//   - ResultEntry and Listing: raw search results and the chosen candidate
//   - ExchangeRates: conversion factors into CNY for one run
//   - ProductOutcome and RunReport: per-product results and the run artifact
//
// The JSON field names of ProductOutcome and RunReport form the prices.json
// format read by other tools and must not change.
package model
