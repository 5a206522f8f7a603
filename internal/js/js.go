package js

// COLLECT_ANCHORS runs inside the rendered page and returns every anchor in document order as
// {title, href}. href is the resolved absolute URL. Filtering happens on the Go side.
var COLLECT_ANCHORS string = `
() => {
    return Array.prototype.slice.call(document.querySelectorAll('a')).map(function (a) {
        var text = (a.innerText || '').trim();
        if (text === '') {
            text = (a.getAttribute('title') || '').trim();
        }
        // SVG anchors expose href as an SVGAnimatedString
        var href = typeof a.href === 'string' ? a.href : '';
        return { title: text, href: href };
    });
}
`
