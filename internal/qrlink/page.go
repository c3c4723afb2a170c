package qrlink

// pageHTML is the pairing page. It reloads the QR image on every status poll
// so a superseding token shows up without a manual refresh, and closes
// itself shortly after the session connects.
const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>WhatsApp Pairing</title>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: linear-gradient(135deg, #075e54 0%, #128c7e 100%);
            min-height: 100vh;
            display: flex;
            align-items: center;
            justify-content: center;
            padding: 20px;
        }
        .card {
            background: white;
            border-radius: 16px;
            padding: 40px;
            text-align: center;
            box-shadow: 0 20px 60px rgba(0,0,0,0.3);
            max-width: 400px;
        }
        h1 { color: #075e54; font-size: 24px; margin-bottom: 8px; }
        .subtitle { color: #667781; font-size: 14px; margin-bottom: 24px; }
        .qr-container {
            background: #f0f2f5;
            border-radius: 12px;
            padding: 20px;
            margin-bottom: 24px;
        }
        .qr-container img { display: block; margin: 0 auto; }
        .instructions {
            text-align: left;
            background: #f0f2f5;
            border-radius: 8px;
            padding: 16px;
        }
        .instructions h2 { font-size: 14px; color: #075e54; margin-bottom: 12px; }
        .instructions ol { color: #3b4a54; font-size: 13px; padding-left: 20px; }
        .instructions li { margin-bottom: 8px; }
        .status { margin-top: 20px; padding: 12px; border-radius: 8px; font-size: 13px; }
        .status.waiting { background: #fff3cd; color: #856404; }
        .status.connected { background: #d4edda; color: #155724; }
    </style>
</head>
<body>
    <div class="card">
        <h1>Zappy</h1>
        <p class="subtitle">Scan to connect WhatsApp</p>
        <div class="qr-container">
            <img id="qr" src="/qr.png" alt="QR Code" width="260" height="260">
        </div>
        <div class="instructions">
            <h2>How to connect:</h2>
            <ol>
                <li>Open WhatsApp on your phone</li>
                <li>Tap <strong>Menu</strong> or <strong>Settings</strong></li>
                <li>Tap <strong>Linked Devices</strong></li>
                <li>Tap <strong>Link a Device</strong></li>
                <li>Point your phone at this QR code</li>
            </ol>
        </div>
        <div id="status" class="status waiting">
            Waiting for connection...
        </div>
    </div>
    <script>
        setInterval(async () => {
            try {
                const res = await fetch('/status');
                const data = await res.json();
                const el = document.getElementById('status');
                if (data.connected) {
                    el.className = 'status connected';
                    el.textContent = 'Connected! This window will close automatically...';
                    setTimeout(() => window.close(), 1500);
                } else {
                    document.getElementById('qr').src = '/qr.png?t=' + Date.now();
                }
            } catch (e) {}
        }, 1000);
    </script>
</body>
</html>`
